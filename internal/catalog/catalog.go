// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists converter run records in a SQLite database so a
// thesis data/ directory stays auditable: which log produced which CSV,
// when, and with how many rejected rows.
// Implements: prd004-run-catalog (R1-R3).
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/telemetry-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "runs.db"
)

// defaultListLimit bounds List when the caller passes no limit.
const defaultListLimit = 20

// Store manages the run catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at outDir/index/runs.db,
// creating the schema if needed. WAL mode keeps parallel converter
// invocations from corrupting the file.
func Open(outDir string) (*Store, error) {
	dbDir := filepath.Join(outDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const stmt = `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		name TEXT NOT NULL,
		input TEXT NOT NULL,
		outputs TEXT NOT NULL,
		rows_read INTEGER NOT NULL,
		rows_skipped INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_tool ON runs(tool)`); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record inserts one completed run.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) error {
	outputs, err := json.Marshal(rec.Outputs)
	if err != nil {
		return fmt.Errorf("marshaling outputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, tool, name, input, outputs, rows_read, rows_skipped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tool, rec.Name, rec.Input, string(outputs),
		rec.RowsRead, rec.RowsSkipped, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}
	return nil
}

// ListOptions filters List output.
type ListOptions struct {
	// Tool restricts results to one converter when non-empty.
	Tool string

	// Limit caps the number of records (default 20).
	Limit int
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.RunRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, tool, name, input, outputs, rows_read, rows_skipped, created_at
	          FROM runs`
	args := []any{}
	if opts.Tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, opts.Tool)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []types.RunRecord
	for rows.Next() {
		var rec types.RunRecord
		var outputs, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Name, &rec.Input, &outputs,
			&rec.RowsRead, &rec.RowsSkipped, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &rec.Outputs); err != nil {
			return nil, fmt.Errorf("parsing outputs for run %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing timestamp for run %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
