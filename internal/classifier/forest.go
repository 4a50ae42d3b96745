package classifier

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config holds random forest hyperparameters
type Config struct {
	Trees           int
	MaxDepth        int // 0 grows trees until leaves are pure
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 uses sqrt of the input width
	Seed            int64
}

// DefaultConfig returns the hyperparameters the service trains with
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Seed:            42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = d.MinSamplesSplit
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = d.MinSamplesLeaf
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	return c
}

// fitForest grows cfg.Trees bootstrap trees concurrently. Each tree draws
// from its own seeded source so results do not depend on scheduling.
func fitForest(ctx context.Context, x [][]float64, y []int, cfg Config) ([]Tree, error) {
	if len(x) == 0 {
		return nil, errors.New("forest: empty training set")
	}
	if len(x) != len(y) {
		return nil, errors.New("forest: X and y length mismatch")
	}

	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(len(x[0]))))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	trees := make([]Tree, cfg.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	n := len(x)
	for t := 0; t < cfg.Trees; t++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rnd := rand.New(rand.NewSource(cfg.Seed + int64(t)))
			idx := make([]int, n)
			for i := range idx {
				idx[i] = rnd.Intn(n)
			}
			trees[t] = fitTree(x, y, idx, cfg, maxFeatures, rnd)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}
