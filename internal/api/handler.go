package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kartoza/loan-risk/internal/config"
	"github.com/kartoza/loan-risk/internal/features"
	"github.com/kartoza/loan-risk/internal/models"
	"github.com/kartoza/loan-risk/internal/service"
)

const healthMessage = "Loan default prediction service is running"

// RunLister returns recent model runs
type RunLister interface {
	List(limit int) ([]models.ModelRun, error)
}

// modelDescriber is implemented by classifiers that can describe themselves
type modelDescriber interface {
	Trees() int
	Categories() []string
}

// Handler provides HTTP API endpoints
type Handler struct {
	predictor *service.Predictor
	runs      RunLister
	cfg       config.Config
	logger    *slog.Logger
}

// NewHandler creates a new API handler. A nil predictor makes /predict
// answer 503 until the model is ready; a nil run lister hides run history.
func NewHandler(
	predictor *service.Predictor,
	runs RunLister,
	cfg config.Config,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		predictor: predictor,
		runs:      runs,
		cfg:       cfg,
		logger:    logger,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(CORS)

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/model", h.handleModel).Methods(http.MethodGet, http.MethodOptions)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// respondError sends the failure envelope
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Success: false, Error: message})
}

// handleHealth reports liveness; it does not depend on the classifier
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Message: healthMessage,
	})
}

// handlePredict scores one applicant. Every failure, including malformed
// input, is reported as a 500 with success=false.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		respondError(w, http.StatusServiceUnavailable, "model not ready")
		return
	}

	req, err := decodePredictRequest(r.Body)
	if err != nil {
		h.logger.Warn("invalid prediction request", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := h.predictor.Predict(r.Context(), req)
	if err != nil {
		h.logger.Error("prediction failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Debug("prediction served",
		slog.Float64("probability", res.Probability),
		slog.String("risk", res.RiskLevel.String()),
	)
	respondJSON(w, http.StatusOK, models.PredictResponse{
		Success:            true,
		DefaultProbability: res.Probability,
		DefaultRisk:        res.RiskLevel.String(),
		Recommendation:     res.Recommendation.String(),
	})
}

// decodePredictRequest reads exactly one JSON value from body
func decodePredictRequest(body io.Reader) (models.PredictRequest, error) {
	var req models.PredictRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("request body is empty")
		}
		return req, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return req, errors.New("unexpected data after JSON body")
	}
	return req, nil
}

// handleModel describes the classifier currently serving predictions
func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		respondError(w, http.StatusServiceUnavailable, "model not ready")
		return
	}

	model := h.predictor.Model()
	info := models.ModelInfoResponse{
		Fingerprint: model.Fingerprint(),
		Columns:     features.Columns,
		Categories:  []string{},
		Runs:        []models.ModelRun{},
	}
	if d, ok := model.(modelDescriber); ok {
		info.Trees = d.Trees()
		info.Categories = d.Categories()
	}

	if h.runs != nil {
		runs, err := h.runs.List(10)
		if err != nil {
			h.logger.Warn("failed to list model runs", slog.String("error", err.Error()))
		} else {
			info.Runs = runs
		}
	}

	respondJSON(w, http.StatusOK, info)
}
