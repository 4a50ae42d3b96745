// Package service runs one prediction: normalize, classify, apply policy.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kartoza/loan-risk/internal/cache"
	"github.com/kartoza/loan-risk/internal/features"
	"github.com/kartoza/loan-risk/internal/models"
	"github.com/kartoza/loan-risk/internal/observability"
	"github.com/kartoza/loan-risk/internal/policy"
)

// Classifier returns P(default) for a complete record
type Classifier interface {
	Predict(rec features.Record) (float64, error)
	Fingerprint() string
}

// Result is the outcome of one prediction
type Result struct {
	Probability    float64
	RiskLevel      policy.RiskLevel
	Recommendation policy.Recommendation
}

// Predictor is safe for concurrent use: it holds no per-request state
type Predictor struct {
	model  Classifier
	cache  cache.Cache
	logger *slog.Logger
}

// NewPredictor wires a classifier with an optional cache (nil disables caching)
func NewPredictor(model Classifier, c cache.Cache, logger *slog.Logger) *Predictor {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{model: model, cache: c, logger: logger}
}

// Model returns the classifier serving predictions
func (p *Predictor) Model() Classifier {
	return p.model
}

// Predict scores a client payload
func (p *Predictor) Predict(ctx context.Context, req models.PredictRequest) (Result, error) {
	rec := features.Normalize(req)
	if p.logger.Enabled(ctx, slog.LevelDebug) {
		p.logger.DebugContext(ctx, "normalized applicant", slog.Any("features", rec.Values()))
	}

	prob, err := p.probability(ctx, rec)
	if err != nil {
		observability.ObservePredictionError()
		return Result{}, err
	}

	risk, recommendation := policy.Assess(prob)
	observability.ObservePrediction(risk.String(), recommendation.String())

	return Result{
		Probability:    prob,
		RiskLevel:      risk,
		Recommendation: recommendation,
	}, nil
}

func (p *Predictor) probability(ctx context.Context, rec features.Record) (float64, error) {
	key := cache.Key(p.model.Fingerprint(), rec)

	cached, ok, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		observability.ObserveCache("error")
		p.logger.Warn("prediction cache lookup failed", slog.String("error", err.Error()))
	case ok:
		observability.ObserveCache("hit")
		return cached, nil
	default:
		observability.ObserveCache("miss")
	}

	start := time.Now()
	prob, err := p.model.Predict(rec)
	observability.ObserveClassify(time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("classifier failed: %w", err)
	}

	if err := p.cache.Set(ctx, key, prob); err != nil {
		p.logger.Warn("prediction cache store failed", slog.String("error", err.Error()))
	}
	return prob, nil
}
