// Package bootstrap produces the classifier the server runs with: it loads
// the persisted model, or trains and persists one when none is usable.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/kartoza/loan-risk/internal/classifier"
	"github.com/kartoza/loan-risk/internal/dataset"
	"github.com/kartoza/loan-risk/internal/models"
	"github.com/kartoza/loan-risk/internal/registry"
)

// Recorder logs bootstrap runs
type Recorder interface {
	Record(run *models.ModelRun) error
}

// Options configures LoadOrTrain
type Options struct {
	ModelPath string
	DataPath  string
	Config    classifier.Config
	Recorder  Recorder // optional
	Logger    *slog.Logger
}

// LoadOrTrain returns the persisted model at opts.ModelPath. A missing,
// empty, corrupt or schema-incompatible artifact is replaced by a model
// trained from opts.DataPath.
func LoadOrTrain(ctx context.Context, opts Options) (*classifier.Pipeline, error) {
	logger := opts.logger()
	start := time.Now()

	p, err := classifier.Load(opts.ModelPath)
	switch {
	case err == nil:
		logger.Info("model loaded from file",
			slog.String("path", opts.ModelPath),
			slog.String("fingerprint", p.Fingerprint()),
			slog.Int("trees", p.Trees()),
			slog.Int64("seed", p.Config().Seed),
		)
		opts.record(logger, &models.ModelRun{
			Fingerprint: p.Fingerprint(),
			Source:      registry.SourceLoaded,
			Artifact:    opts.ModelPath,
			Trees:       p.Trees(),
			DurationMS:  time.Since(start).Milliseconds(),
		})
		return p, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("model file not found, training new model", slog.String("path", opts.ModelPath))
	case errors.Is(err, classifier.ErrCorruptArtifact), errors.Is(err, classifier.ErrSchemaMismatch):
		logger.Warn("model file unusable, training new model", slog.String("error", err.Error()))
	default:
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return Train(ctx, opts)
}

// Train fits a model from opts.DataPath and persists it to opts.ModelPath
func Train(ctx context.Context, opts Options) (*classifier.Pipeline, error) {
	logger := opts.logger()
	start := time.Now()

	ds, err := dataset.LoadCSV(opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}
	logger.Info("training model",
		slog.String("dataset", opts.DataPath),
		slog.Int("samples", ds.Len()),
		slog.Int("positives", ds.Positives()),
	)

	p, err := classifier.Train(ctx, ds.Records, ds.Labels, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}

	if err := p.Save(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	elapsed := time.Since(start)
	logger.Info("model trained and saved",
		slog.String("path", opts.ModelPath),
		slog.String("fingerprint", p.Fingerprint()),
		slog.Duration("elapsed", elapsed),
	)
	opts.record(logger, &models.ModelRun{
		Fingerprint: p.Fingerprint(),
		Source:      registry.SourceTrained,
		Artifact:    opts.ModelPath,
		Dataset:     opts.DataPath,
		Samples:     ds.Len(),
		Positives:   ds.Positives(),
		Trees:       p.Trees(),
		DurationMS:  elapsed.Milliseconds(),
	})
	return p, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// record never fails the bootstrap; the registry is informational
func (o Options) record(logger *slog.Logger, run *models.ModelRun) {
	if o.Recorder == nil {
		return
	}
	if err := o.Recorder.Record(run); err != nil {
		logger.Warn("failed to record model run", slog.String("error", err.Error()))
	}
}
