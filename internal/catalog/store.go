// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps an optional SQLite record of export runs: which notes
// were written, where, with how many images, and which failed.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/qquill2md/pkg/types"
)

const (
	// runTimeLayout is fixed-width so run timestamps sort as text.
	runTimeLayout = "2006-01-02T15:04:05.000000000Z"

	noteTimeLayout = "2006-01-02T15:04:05"
)

// ErrNoRun is returned when the catalog holds no export run.
var ErrNoRun = errors.New("catalog has no export runs")

// Run describes one export run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Input      string    `json:"input" yaml:"input"`
	Output     string    `json:"output" yaml:"output"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Exported   int       `json:"exported" yaml:"exported"`
	Failed     int       `json:"failed" yaml:"failed"`
}

// Store manages the catalog database.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// Open opens or creates the catalog at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			exported INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			note_key TEXT NOT NULL,
			id TEXT,
			title TEXT,
			timestamp TEXT,
			markdown_path TEXT,
			images INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, note_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_status ON notes(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a new run and makes it the target of Record.
func (s *Store) BeginRun(ctx context.Context, cfg types.ExportConfig) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, output, started_at) VALUES (?, ?, ?, ?)`,
		id, cfg.InputPath, cfg.OutputDir, time.Now().UTC().Format(runTimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	s.runID = id
	return id, nil
}

// Record stores the outcome of one note in the current run.
func (s *Store) Record(ctx context.Context, rec types.NoteRecord) error {
	if s.runID == "" {
		return ErrNoRun
	}

	ts := ""
	if !rec.Timestamp.IsZero() {
		ts = rec.Timestamp.Format(noteTimeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (run_id, note_key, id, title, timestamp, markdown_path, images, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, note_key) DO UPDATE SET
			id=excluded.id, title=excluded.title, timestamp=excluded.timestamp,
			markdown_path=excluded.markdown_path, images=excluded.images,
			status=excluded.status, error=excluded.error`,
		s.runID, rec.Key, rec.ID, rec.Title, ts, rec.MarkdownPath, rec.Images,
		string(rec.Status), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("recording note %s: %w", rec.Key, err)
	}
	return nil
}

// FinishRun stamps the current run with its counts.
func (s *Store) FinishRun(ctx context.Context, exported, failed int) error {
	if s.runID == "" {
		return ErrNoRun
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, exported = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(runTimeLayout), exported, failed, s.runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input, output, started_at, finished_at, exported, failed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&r.ID, &r.Input, &r.Output, &started, &finished, &r.Exported, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying last run: %w", err)
	}

	r.StartedAt, _ = time.Parse(runTimeLayout, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(runTimeLayout, finished.String)
	}
	return r, nil
}

// QueryOptions filters catalog note listings.
type QueryOptions struct {
	// RunID selects the run. Empty means the latest run.
	RunID string

	// Status filters by export status.
	Status types.ExportStatus

	// Title keeps notes whose title contains this substring (case-insensitive).
	Title string

	// Limit caps the result count. Zero or negative lists every note.
	Limit int
}

// Notes lists the notes of a run in the order they were recorded.
func (s *Store) Notes(ctx context.Context, opts QueryOptions) ([]types.NoteRecord, error) {
	runID := opts.RunID
	if runID == "" {
		run, err := s.LastRun(ctx)
		if err != nil {
			return nil, err
		}
		runID = run.ID
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT note_key, id, title, timestamp, markdown_path, images, status, error
		FROM notes WHERE run_id = ?`)
	args = append(args, runID)

	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Title != "" {
		qb.WriteString(` AND lower(title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.Title)+"%")
	}
	qb.WriteString(` ORDER BY rowid LIMIT ?`)
	args = append(args, sqlLimit(opts.Limit))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var out []types.NoteRecord
	for rows.Next() {
		var (
			rec                                   types.NoteRecord
			id, title, ts, mdPath, status, errMsg sql.NullString
		)
		if err := rows.Scan(&rec.Key, &id, &title, &ts, &mdPath, &rec.Images, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		rec.ID = id.String
		rec.Title = title.String
		rec.MarkdownPath = mdPath.String
		rec.Status = types.ExportStatus(status.String)
		rec.Error = errMsg.String
		if ts.String != "" {
			rec.Timestamp, _ = time.Parse(noteTimeLayout, ts.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// sqlLimit maps a QueryOptions limit to a LIMIT argument; SQLite treats a
// negative LIMIT as unbounded.
func sqlLimit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
