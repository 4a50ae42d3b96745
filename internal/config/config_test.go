package config

import (
	"flag"
	"io"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Port != 5000 {
		t.Errorf("Expected port 5000, got %d", cfg.Port)
	}
	if cfg.ModelPath != "loan_default_model.gob" {
		t.Errorf("Unexpected model path %q", cfg.ModelPath)
	}
	if cfg.DataPath != "../data/loan_data_engineered.csv" {
		t.Errorf("Unexpected data path %q", cfg.DataPath)
	}
	if cfg.Trees != 100 || cfg.Seed != 42 {
		t.Errorf("Expected 100 trees seed 42, got %d seed %d", cfg.Trees, cfg.Seed)
	}
	if cfg.TrainOnly {
		t.Error("TrainOnly should default to false")
	}
	if cfg.Address() != ":5000" {
		t.Errorf("Unexpected address %q", cfg.Address())
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/models/m.gob")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("SEED", "7")

	cfg, err := Parse(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.ModelPath != "/models/m.gob" {
		t.Errorf("Unexpected model path %q", cfg.ModelPath)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("Expected 5m TTL, got %v", cfg.CacheTTL)
	}
	if cfg.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", cfg.Seed)
	}
}

func TestParseFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Parse(newFlagSet(), []string{"-port", "8081", "-train", "-trees", "10", "-version"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Expected port 8081, got %d", cfg.Port)
	}
	if !cfg.TrainOnly {
		t.Error("Expected TrainOnly")
	}
	if cfg.Trees != 10 {
		t.Errorf("Expected 10 trees, got %d", cfg.Trees)
	}
	if !cfg.ShowVersion {
		t.Error("Expected ShowVersion")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad port", []string{"-port", "0"}},
		{"empty model", []string{"-model", ""}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(newFlagSet(), tt.args); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
