package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartoza/loan-risk/internal/api"
	"github.com/kartoza/loan-risk/internal/bootstrap"
	"github.com/kartoza/loan-risk/internal/cache"
	"github.com/kartoza/loan-risk/internal/classifier"
	"github.com/kartoza/loan-risk/internal/config"
	"github.com/kartoza/loan-risk/internal/observability"
	"github.com/kartoza/loan-risk/internal/registry"
	"github.com/kartoza/loan-risk/internal/server"
	"github.com/kartoza/loan-risk/internal/service"
)

var version = "dev"

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	cfg.Version = version

	if cfg.ShowVersion {
		fmt.Printf("Loan Risk v%s\n", version)
		os.Exit(0)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	logger.Info("loan risk service starting",
		slog.String("version", cfg.Version),
		slog.Int("port", cfg.Port),
		slog.String("model", cfg.ModelPath),
	)

	opts := bootstrap.Options{
		ModelPath: cfg.ModelPath,
		DataPath:  cfg.DataPath,
		Config: classifier.Config{
			Trees:    cfg.Trees,
			MaxDepth: cfg.MaxDepth,
			Seed:     cfg.Seed,
		},
		Logger: logger,
	}

	var runs api.RunLister
	if cfg.RegistryPath != "" {
		store, err := registry.Open(cfg.RegistryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
		runs = store

		if last, err := store.Latest(); err != nil {
			logger.Warn("failed to read model registry", slog.String("error", err.Error()))
		} else if last != nil {
			logger.Info("previous model run",
				slog.String("fingerprint", last.Fingerprint),
				slog.String("source", last.Source),
				slog.String("at", last.CreatedAt),
			)
		}
	}

	ctx := context.Background()

	if cfg.TrainOnly {
		_, err := bootstrap.Train(ctx, opts)
		return err
	}

	// The model must be ready before the listener opens.
	model, err := bootstrap.LoadOrTrain(ctx, opts)
	if err != nil {
		return err
	}

	predictionCache, closeCache := newCache(ctx, cfg, logger)
	defer closeCache()

	predictor := service.NewPredictor(model, predictionCache, logger)
	srv := server.New(cfg, predictor, runs, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		if err := srv.Stop(); err != nil {
			logger.Error("error during shutdown", slog.String("error", err.Error()))
		}
	}

	logger.Info("server exited")
	return nil
}

// newCache prefers Redis when configured and reachable, then the in-memory
// LRU, then no cache at all.
func newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		err := rc.Ping(ctx)
		if err == nil {
			logger.Info("using redis prediction cache", slog.String("addr", cfg.RedisAddr))
			return rc, func() { rc.Close() }
		}
		logger.Warn("redis unavailable, falling back to memory cache",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		rc.Close()
	}

	if cfg.CacheSize > 0 {
		mc, err := cache.NewMemoryCache(cfg.CacheSize)
		if err == nil {
			return mc, func() {}
		}
		logger.Warn("memory cache disabled", slog.String("error", err.Error()))
	}

	return cache.Nop{}, func() {}
}
