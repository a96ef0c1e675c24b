// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export runs the backup-to-Markdown pipeline: every note of a
// loaded backup is rendered and written to the output directory, one note at
// a time.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/qquill2md/internal/render"
	"github.com/pdiddy/qquill2md/internal/resources"
	"github.com/pdiddy/qquill2md/pkg/types"
)

// Recorder receives the outcome of every note. The catalog store implements it.
type Recorder interface {
	Record(ctx context.Context, rec types.NoteRecord) error
}

// Failure names a note that could not be exported.
type Failure struct {
	Key string
	ID  string
	Err error
}

// Summary holds the outcome of an export run.
type Summary struct {
	// Exported lists the ids of notes written, in processing order.
	Exported []string
	Failed   []Failure
	Images   int
}

// Total returns the number of notes processed.
func (s Summary) Total() int {
	return len(s.Exported) + len(s.Failed)
}

// HasFailures reports whether any note failed.
func (s Summary) HasFailures() bool {
	return len(s.Failed) > 0
}

// FailedKeys returns the keys of failed notes.
func (s Summary) FailedKeys() []string {
	keys := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		keys[i] = f.Key
	}
	return keys
}

// Exporter writes notes according to an ExportConfig.
type Exporter struct {
	cfg      types.ExportConfig
	renderer *render.Renderer
	log      *zap.Logger
	recorder Recorder
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRecorder sends every note outcome to r.
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) { e.recorder = r }
}

// New returns an Exporter for cfg. A nil logger discards diagnostics.
func New(cfg types.ExportConfig, log *zap.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	images := resources.New(cfg.ResourcesDir(), log)
	e := &Exporter{
		cfg:      cfg,
		renderer: render.New(cfg.Fields, images),
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare creates the output and resources directories if they are missing.
func (e *Exporter) Prepare() error {
	for _, dir := range []string{e.cfg.OutputDir, e.cfg.ResourcesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// ExportNote renders the raw note stored under key and writes it to
// OutputDir/<id>.md.
func (e *Exporter) ExportNote(key string, raw json.RawMessage) (types.NoteRecord, error) {
	rec := types.NoteRecord{Key: key, Status: types.StatusFailed}

	note, err := types.DecodeNote(raw)
	if err != nil {
		rec.Error = err.Error()
		return rec, &types.Error{Kind: types.NoteInvalid, Subject: key, Err: err}
	}
	rec.ID = note.ID
	rec.Title = note.Title

	doc, err := e.renderer.Render(key, note)
	if err != nil {
		rec.Error = err.Error()
		return rec, err
	}
	rec.Timestamp = doc.Timestamp
	rec.Images = doc.Images

	mdPath := filepath.Join(e.cfg.OutputDir, note.ID+".md")
	if err := os.WriteFile(mdPath, []byte(doc.Markdown), 0o644); err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("writing %s: %w", mdPath, err)
	}

	rec.MarkdownPath = mdPath
	rec.Status = types.StatusExported
	rec.Error = ""
	return rec, nil
}

// ExportAll creates the output directories and exports every note of b in
// document order. A failing note is logged and reported in the summary; the
// remaining notes are still processed. Per-note status lines go to w.
// ExportAll stops early only when ctx is cancelled.
func (e *Exporter) ExportAll(ctx context.Context, b *types.Backup, w io.Writer) (Summary, error) {
	var summary Summary

	if err := e.Prepare(); err != nil {
		return summary, err
	}

	for key, raw := range b.Marks.All() {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rec, err := e.ExportNote(key, raw)
		if err != nil {
			e.log.Warn("skipping note", zap.String("key", key), zap.String("id", rec.ID), zap.Error(err))
			fmt.Fprintf(w, "failed:   %s (%v)\n", key, err)
			summary.Failed = append(summary.Failed, Failure{Key: key, ID: rec.ID, Err: err})
		} else {
			fmt.Fprintf(w, "exported: %s (%d images)\n", rec.ID, rec.Images)
			summary.Exported = append(summary.Exported, rec.ID)
			summary.Images += rec.Images
		}

		if e.recorder != nil {
			if err := e.recorder.Record(ctx, rec); err != nil {
				e.log.Warn("catalog record failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return summary, nil
}
