// Package storage persists separation runs to SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hydrographs/baseflow/internal/station"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	station     TEXT NOT NULL,
	method      TEXT NOT NULL,
	parameter   REAL,
	kge         REAL,
	bfi         REAL,
	recession_a REAL,
	PRIMARY KEY (run_id, station, method)
);
CREATE TABLE IF NOT EXISTS series (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	station TEXT NOT NULL,
	method  TEXT NOT NULL,
	idx     INTEGER NOT NULL,
	flow    REAL NOT NULL,
	PRIMARY KEY (run_id, station, method, idx)
);
`

// Store writes separation results to a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists one batch run and returns its generated run ID. Summary
// rows always include the baseflow series; the whole run is written in a
// single transaction.
func (s *Store) SaveRun(ctx context.Context, results map[string]*station.Result) (string, error) {
	runID := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, created_at) VALUES (?, ?)", runID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO results (run_id, station, method, parameter, kge, bfi, recession_a) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer resStmt.Close()

	serStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO series (run_id, station, method, idx, flow) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer serStmt.Close()

	for name, res := range results {
		for method, b := range res.Baseflow {
			if _, err := resStmt.ExecContext(ctx, runID, name, string(method),
				res.Parameters[method], res.KGE[method], res.BFI[method], res.RecessionA); err != nil {
				return "", fmt.Errorf("inserting result %s/%s: %w", name, method, err)
			}
			for i, v := range b {
				if _, err := serStmt.ExecContext(ctx, runID, name, string(method), i, v); err != nil {
					return "", fmt.Errorf("inserting series %s/%s: %w", name, method, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// MethodSummary is one stored summary row.
type MethodSummary struct {
	Station    string
	Method     string
	Parameter  float64
	KGE        float64
	BFI        float64
	RecessionA float64
}

// RunSummaries loads the summary rows of one run, ordered by station then
// method.
func (s *Store) RunSummaries(ctx context.Context, runID string) ([]MethodSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT station, method, parameter, kge, bfi, recession_a FROM results WHERE run_id = ? ORDER BY station, method", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MethodSummary
	for rows.Next() {
		var m MethodSummary
		if err := rows.Scan(&m.Station, &m.Method, &m.Parameter, &m.KGE, &m.BFI, &m.RecessionA); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Baseflow loads one stored baseflow series.
func (s *Store) Baseflow(ctx context.Context, runID, stationName, method string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT flow FROM series WHERE run_id = ? AND station = ? AND method = ? ORDER BY idx", runID, stationName, method)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
