package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kartoza/loan-risk/internal/features"
)

// ErrNoRows is returned when a dataset has a header but no samples
var ErrNoRows = errors.New("dataset has no rows")

// Dataset holds labelled training samples
type Dataset struct {
	Records []features.Record
	Labels  []int
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Positives returns the number of samples labelled as defaults
func (d *Dataset) Positives() int {
	n := 0
	for _, y := range d.Labels {
		if y == 1 {
			n++
		}
	}
	return n
}

// LoadCSV reads a labelled dataset from disk
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV with a header row. Extra columns are ignored; every
// feature column and the label column must be present.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header: %w", ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	required := append(append([]string{}, features.Columns...), features.LabelColumn)
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	numeric := features.NumericColumns()
	ds := &Dataset{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		nums := make([]float64, len(numeric))
		for i, name := range numeric {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[index[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, name, err)
			}
			nums[i] = v
		}

		label, err := strconv.ParseFloat(strings.TrimSpace(row[index[features.LabelColumn]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, features.LabelColumn, err)
		}
		y := 0
		if label != 0 {
			y = 1
		}

		purpose := strings.TrimSpace(row[index[features.PurposeColumn]])
		ds.Records = append(ds.Records, features.FromNumeric(purpose, nums))
		ds.Labels = append(ds.Labels, y)
	}

	if len(ds.Records) == 0 {
		return nil, ErrNoRows
	}
	return ds, nil
}
