package classifier

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/loan-risk/internal/features"
	"github.com/kartoza/loan-risk/internal/testutil"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Trees = 30
	return cfg
}

func trainSmall(t *testing.T) *Pipeline {
	t.Helper()
	records, labels := testutil.LoanRecords(600, 7)
	p, err := Train(context.Background(), records, labels, smallConfig())
	require.NoError(t, err)
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.Trees)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.MinSamplesSplit)
	assert.Equal(t, 1, cfg.MinSamplesLeaf)
}

func TestTrainAndPredict(t *testing.T) {
	p := trainSmall(t)
	assert.Equal(t, 30, p.Trees())
	assert.NotEmpty(t, p.Fingerprint())
	assert.ElementsMatch(t, testutil.Purposes, p.Categories())

	good := features.Defaults()
	good.FICO = 820
	good.DTI = 2
	good.InterestRate = 0.05

	bad := features.Defaults()
	bad.FICO = 610
	bad.InterestRate = 0.22

	pGood, err := p.Predict(good)
	require.NoError(t, err)
	pBad, err := p.Predict(bad)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, pGood, 0.0)
	assert.LessOrEqual(t, pBad, 1.0)
	assert.Less(t, pGood, pBad)
	assert.Less(t, pGood, 0.25)
	assert.Greater(t, pBad, 0.5)
}

func TestTrainIsDeterministic(t *testing.T) {
	a := trainSmall(t)
	b := trainSmall(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestTrainEmpty(t *testing.T) {
	_, err := Train(context.Background(), nil, nil, smallConfig())
	assert.Error(t, err)
}

func TestTrainCancelled(t *testing.T) {
	records, labels := testutil.LoanRecords(50, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Train(ctx, records, labels, smallConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictUnknownPurpose(t *testing.T) {
	p := trainSmall(t)
	rec := features.Defaults()
	rec.Purpose = "spaceship"

	prob, err := p.Predict(rec)
	require.NoError(t, err)
	assert.True(t, prob >= 0 && prob <= 1)
}

func TestPredictNonFinite(t *testing.T) {
	p := trainSmall(t)
	rec := features.Defaults()
	rec.DTI = math.Inf(1)

	_, err := p.Predict(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dti")
}

func TestPredictNotTrained(t *testing.T) {
	var p *Pipeline
	_, err := p.Predict(features.Defaults())
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = (&Pipeline{}).Predict(features.Defaults())
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestSaveLoad(t *testing.T) {
	p := trainSmall(t)
	path := filepath.Join(t.TempDir(), "nested", "model.gob")

	require.NoError(t, p.Save(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Fingerprint(), loaded.Fingerprint())
	assert.Equal(t, p.Trees(), loaded.Trees())
	assert.Equal(t, p.Config(), loaded.Config())

	records, _ := testutil.LoanRecords(25, 99)
	for _, rec := range records {
		want, err := p.Predict(rec)
		require.NoError(t, err)
		got, err := loaded.Predict(rec)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.gob"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(dir, "empty.gob")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrCorruptArtifact)

	p := trainSmall(t)
	full := filepath.Join(dir, "full.gob")
	require.NoError(t, p.Save(full))
	data, err := os.ReadFile(full)
	require.NoError(t, err)

	truncated := filepath.Join(dir, "truncated.gob")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o644))
	_, err = Load(truncated)
	assert.ErrorIs(t, err, ErrCorruptArtifact)

	garbage := filepath.Join(dir, "garbage.gob")
	require.NoError(t, os.WriteFile(garbage, []byte("not a model"), 0o644))
	_, err = Load(garbage)
	assert.ErrorIs(t, err, ErrCorruptArtifact)
}

func leaf(v float64) Node {
	return Node{Left: -1, Right: -1, Value: v}
}

func minimalArtifact() artifact {
	scale := make([]float64, len(features.NumericColumns()))
	for i := range scale {
		scale[i] = 1
	}
	return artifact{
		Version: artifactVersion,
		Columns: features.Columns,
		Config:  DefaultConfig(),
		Preprocessor: Preprocessor{
			Mean:       make([]float64, len(features.NumericColumns())),
			Scale:      scale,
			Categories: []string{"debt_consolidation"},
		},
		Trees: []Tree{{Nodes: []Node{
			{Feature: 5, Threshold: 0, Left: 1, Right: 2},
			leaf(0.2),
			leaf(0.8),
		}}},
	}
}

func writeArtifact(t *testing.T, a artifact) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(a))
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadMinimalArtifact(t *testing.T) {
	p, err := Load(writeArtifact(t, minimalArtifact()))
	require.NoError(t, err)

	// fico 700 is above the zero threshold
	prob, err := p.Predict(features.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 0.8, prob)
}

func TestLoadRejectsDamagedStructure(t *testing.T) {
	tests := []struct {
		name   string
		damage func(a *artifact)
	}{
		{"missing scales", func(a *artifact) { a.Preprocessor.Scale = nil }},
		{"short scales", func(a *artifact) { a.Preprocessor.Scale = a.Preprocessor.Scale[:3] }},
		{"zero scale", func(a *artifact) { a.Preprocessor.Scale[0] = 0 }},
		{"missing means", func(a *artifact) { a.Preprocessor.Mean = nil }},
		{"no trees", func(a *artifact) { a.Trees = nil }},
		{"empty tree", func(a *artifact) { a.Trees = append(a.Trees, Tree{}) }},
		{"children out of range", func(a *artifact) {
			a.Trees[0].Nodes = []Node{{Left: 5, Right: 6}}
		}},
		{"child points at parent", func(a *artifact) {
			a.Trees[0].Nodes[0].Left = 0
		}},
		{"child points backwards", func(a *artifact) {
			a.Trees[0].Nodes[2] = Node{Left: 1, Right: 1}
		}},
		{"feature beyond width", func(a *artifact) {
			a.Trees[0].Nodes[0].Feature = a.Preprocessor.Width()
		}},
		{"negative feature", func(a *artifact) {
			a.Trees[0].Nodes[0].Feature = -1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := minimalArtifact()
			tt.damage(&a)

			_, err := Load(writeArtifact(t, a))
			assert.ErrorIs(t, err, ErrCorruptArtifact)
		})
	}
}

func TestConcurrentPredict(t *testing.T) {
	p := trainSmall(t)
	records, _ := testutil.LoanRecords(64, 3)

	want := make([]float64, len(records))
	for i, rec := range records {
		v, err := p.Predict(rec)
		require.NoError(t, err)
		want[i] = v
	}

	got := make([]float64, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.Predict(rec)
			if err == nil {
				got[i] = v
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, want, got)
}
