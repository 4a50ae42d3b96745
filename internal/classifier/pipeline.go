// Package classifier trains, persists and evaluates the loan default model:
// a standardizing/one-hot preprocessor feeding a random forest.
package classifier

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/kartoza/loan-risk/internal/features"
)

// artifactVersion is bumped whenever the gob layout changes
const artifactVersion = 1

var (
	// ErrNotTrained is returned when predicting with an empty pipeline
	ErrNotTrained = errors.New("classifier is not trained")
	// ErrCorruptArtifact is returned for empty, truncated, undecodable or
	// structurally invalid model files
	ErrCorruptArtifact = errors.New("model artifact is corrupt")
	// ErrSchemaMismatch is returned when an artifact was trained on other columns
	ErrSchemaMismatch = errors.New("model artifact does not match feature schema")
)

// Pipeline is a trained preprocessor plus forest. It is never modified after
// Train or Load returns, so one value can serve concurrent requests.
type Pipeline struct {
	pre         *Preprocessor
	trees       []Tree
	config      Config
	fingerprint string
}

// artifact is the persisted form of a Pipeline
type artifact struct {
	Version      int
	Columns      []string
	Config       Config
	Preprocessor Preprocessor
	Trees        []Tree
}

// Train fits a pipeline on labelled records
func Train(ctx context.Context, records []features.Record, labels []int, cfg Config) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if len(records) == 0 {
		return nil, errors.New("no training records")
	}

	pre := fitPreprocessor(records)
	x := make([][]float64, len(records))
	for i, rec := range records {
		row, err := pre.Transform(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		x[i] = row
	}

	trees, err := fitForest(ctx, x, labels, cfg)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	p := &Pipeline{pre: pre, trees: trees, config: cfg}
	data, err := p.encode()
	if err != nil {
		return nil, err
	}
	p.fingerprint = fingerprint(data)
	return p, nil
}

// Predict returns P(default) for one record
func (p *Pipeline) Predict(rec features.Record) (float64, error) {
	if p == nil || p.pre == nil || len(p.trees) == 0 {
		return 0, ErrNotTrained
	}

	x, err := p.pre.Transform(rec)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, t := range p.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(p.trees)), nil
}

// Fingerprint identifies the exact trained model (hash of its artifact)
func (p *Pipeline) Fingerprint() string {
	return p.fingerprint
}

// Trees returns the number of trees in the forest
func (p *Pipeline) Trees() int {
	return len(p.trees)
}

// Categories returns the purpose values seen during training
func (p *Pipeline) Categories() []string {
	return slices.Clone(p.pre.Categories)
}

// Config returns the hyperparameters the forest was trained with
func (p *Pipeline) Config() Config {
	return p.config
}

// Save writes the pipeline to path atomically
func (p *Pipeline) Save(path string) error {
	data, err := p.encode()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// Load reads a pipeline written by Save
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", path, ErrCorruptArtifact)
	}

	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrCorruptArtifact)
	}
	if a.Version != artifactVersion || !slices.Equal(a.Columns, features.Columns) {
		return nil, fmt.Errorf("%s: version %d columns %v: %w", path, a.Version, a.Columns, ErrSchemaMismatch)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrCorruptArtifact)
	}

	pre := a.Preprocessor
	pre.buildIndex()
	return &Pipeline{
		pre:         &pre,
		trees:       a.Trees,
		config:      a.Config,
		fingerprint: fingerprint(data),
	}, nil
}

// validate rejects artifacts that decode but cannot be evaluated safely.
// Children always follow their parent in a tree's node slice.
func (a *artifact) validate() error {
	pre := a.Preprocessor
	if len(a.Trees) == 0 {
		return errors.New("no trees")
	}
	if len(pre.Mean) != len(features.NumericColumns()) {
		return fmt.Errorf("expected %d means, got %d", len(features.NumericColumns()), len(pre.Mean))
	}
	if len(pre.Scale) != len(pre.Mean) {
		return fmt.Errorf("expected %d scales, got %d", len(pre.Mean), len(pre.Scale))
	}
	for j, v := range pre.Scale {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scale %d is %v", j, v)
		}
	}

	width := pre.Width()
	for i, t := range a.Trees {
		n := int32(len(t.Nodes))
		if n == 0 {
			return fmt.Errorf("tree %d has no nodes", i)
		}
		for id, node := range t.Nodes {
			if node.Left < 0 {
				continue
			}
			self := int32(id)
			if node.Left <= self || node.Left >= n || node.Right <= self || node.Right >= n {
				return fmt.Errorf("tree %d node %d has children %d/%d", i, id, node.Left, node.Right)
			}
			if node.Feature < 0 || node.Feature >= width {
				return fmt.Errorf("tree %d node %d splits on feature %d of %d", i, id, node.Feature, width)
			}
		}
	}
	return nil
}

func (p *Pipeline) encode() ([]byte, error) {
	if p.pre == nil {
		return nil, ErrNotTrained
	}
	var buf bytes.Buffer
	a := artifact{
		Version:      artifactVersion,
		Columns:      features.Columns,
		Config:       p.config,
		Preprocessor: *p.pre,
		Trees:        p.trees,
	}
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return buf.Bytes(), nil
}

func fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
