package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kartoza/loan-risk/internal/api"
	"github.com/kartoza/loan-risk/internal/config"
	"github.com/kartoza/loan-risk/internal/observability"
	"github.com/kartoza/loan-risk/internal/service"
)

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	predictor  *service.Predictor
	runs       api.RunLister
	logger     *slog.Logger
}

// New creates a Server around an already bootstrapped predictor
func New(cfg config.Config, predictor *service.Predictor, runs api.RunLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		router:    mux.NewRouter(),
		predictor: predictor,
		runs:      runs,
		logger:    logger,
	}

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(s.predictor, s.runs, s.cfg, s.logger)
	apiHandler.RegisterRoutes(apiRouter)

	s.router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	// 404 and 405 responses bypass route middleware, so CORS wraps the root
	s.handler = api.CORS(s.router)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
