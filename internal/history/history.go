// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional SQLite log of conversion runs and
// exports it as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

// ErrDisabled is returned by NewStore when no database path is configured.
var ErrDisabled = errors.New("conversion history is disabled")

const defaultMaxResults = 20

// Store manages the conversion history database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at cfg.DBPath, creating
// its parent directory and schema as needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, ErrDisabled
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			backend TEXT NOT NULL,
			start_page INTEGER NOT NULL,
			end_page INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started_at ON conversions(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends rec to the history and returns its assigned ID.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions
			(input_path, output_path, backend, start_page, end_page, status, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.InputPath,
		rec.OutputPath,
		string(rec.Backend),
		rec.StartPage,
		rec.EndPage,
		string(rec.Status),
		rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording conversion of %s: %w", rec.InputPath, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading record id: %w", err)
	}
	return id, nil
}

// List returns the most recent records, newest first. A limit of zero or
// less uses the configured maximum.
func (s *Store) List(ctx context.Context, limit int) ([]types.ConversionRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	return s.query(ctx, limit)
}

func (s *Store) query(ctx context.Context, limit int) ([]types.ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, output_path, backend, start_page, end_page,
			status, COALESCE(error, ''), started_at, duration_ms
		FROM conversions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		var (
			rec        types.ConversionRecord
			backend    string
			status     string
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.InputPath, &rec.OutputPath, &backend,
			&rec.StartPage, &rec.EndPage, &status, &rec.Error, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Backend = types.ConversionBackend(backend)
		rec.Status = types.ConversionStatus(status)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return records, nil
}

const exportLimit = 100000

// ExportYAML writes the whole history to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	records, err := s.query(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.ConversionRecord{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the whole history to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	records, err := s.query(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.ConversionRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
