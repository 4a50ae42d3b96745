// Package cache stores default probabilities keyed by model and applicant.
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/kartoza/loan-risk/internal/features"
)

// Cache stores probabilities produced by one trained model
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, p float64) error
}

// Key identifies a record scored by the model with the given fingerprint.
// Records that differ in any field hash differently.
func Key(fingerprint string, rec features.Record) string {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range rec.Numeric() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		d.Write(buf[:])
	}
	d.WriteString(rec.Purpose)
	return fmt.Sprintf("loanrisk:%s:%016x", fingerprint, d.Sum64())
}

// Nop never stores anything
type Nop struct{}

// Get always misses
func (Nop) Get(context.Context, string) (float64, bool, error) { return 0, false, nil }

// Set discards the value
func (Nop) Set(context.Context, string, float64) error { return nil }
