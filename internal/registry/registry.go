// Package registry keeps a SQLite log of every classifier bootstrap.
package registry

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kartoza/loan-risk/internal/models"
)

// Sources of a model run
const (
	SourceLoaded  = "loaded"
	SourceTrained = "trained"
)

const schema = `CREATE TABLE IF NOT EXISTS model_runs (
	id          TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	source      TEXT NOT NULL,
	artifact    TEXT NOT NULL,
	dataset     TEXT NOT NULL DEFAULT '',
	samples     INTEGER NOT NULL DEFAULT 0,
	positives   INTEGER NOT NULL DEFAULT 0,
	trees       INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
)`

// Store records model runs
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the registry database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create registry schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores a run, assigning its ID and timestamp when empty
func (s *Store) Record(run *models.ModelRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO model_runs (id, fingerprint, source, artifact, dataset, samples, positives, trees, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Fingerprint, run.Source, run.Artifact, run.Dataset,
		run.Samples, run.Positives, run.Trees, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record model run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first
func (s *Store) List(limit int) ([]models.ModelRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, fingerprint, source, artifact, dataset, samples, positives, trees, duration_ms, created_at
		 FROM model_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list model runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ModelRun{}
	for rows.Next() {
		var r models.ModelRun
		if err := rows.Scan(&r.ID, &r.Fingerprint, &r.Source, &r.Artifact, &r.Dataset,
			&r.Samples, &r.Positives, &r.Trees, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Latest returns the newest run, or nil when none exist
func (s *Store) Latest() (*models.ModelRun, error) {
	runs, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
