package classifier

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kartoza/loan-risk/internal/features"
)

// Preprocessor standardizes the numeric columns and one-hot encodes the
// purpose column. Categories not seen during fitting encode as all zeros.
type Preprocessor struct {
	Mean       []float64
	Scale      []float64
	Categories []string

	categoryIndex map[string]int
}

// fitPreprocessor learns column statistics and the category vocabulary
func fitPreprocessor(records []features.Record) *Preprocessor {
	nNumeric := len(features.NumericColumns())
	columns := make([][]float64, nNumeric)
	for j := range columns {
		columns[j] = make([]float64, len(records))
	}

	seen := make(map[string]struct{})
	for i, rec := range records {
		for j, v := range rec.Numeric() {
			columns[j][i] = v
		}
		seen[rec.Purpose] = struct{}{}
	}

	p := &Preprocessor{
		Mean:  make([]float64, nNumeric),
		Scale: make([]float64, nNumeric),
	}
	for j, col := range columns {
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		p.Mean[j] = mean
		p.Scale[j] = std
	}

	for c := range seen {
		p.Categories = append(p.Categories, c)
	}
	sort.Strings(p.Categories)
	p.buildIndex()

	return p
}

func (p *Preprocessor) buildIndex() {
	p.categoryIndex = make(map[string]int, len(p.Categories))
	for i, c := range p.Categories {
		p.categoryIndex[c] = i
	}
}

// Width returns the length of a transformed row
func (p *Preprocessor) Width() int {
	return len(p.Mean) + len(p.Categories)
}

// Transform encodes a record into the model's input space
func (p *Preprocessor) Transform(rec features.Record) ([]float64, error) {
	nums := rec.Numeric()
	if len(nums) != len(p.Mean) {
		return nil, fmt.Errorf("expected %d numeric columns, got %d: %w", len(p.Mean), len(nums), ErrSchemaMismatch)
	}

	numeric := features.NumericColumns()
	out := make([]float64, p.Width())
	for j, v := range nums {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("column %q has non-finite value %v", numeric[j], v)
		}
		out[j] = (v - p.Mean[j]) / p.Scale[j]
	}
	if i, ok := p.categoryIndex[rec.Purpose]; ok {
		out[len(p.Mean)+i] = 1
	}
	return out, nil
}
