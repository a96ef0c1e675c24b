// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Dump is the exported form of one run and its notes.
type Dump struct {
	Run   Run        `json:"run" yaml:"run"`
	Notes []DumpNote `json:"notes" yaml:"notes"`
}

// DumpNote is a note entry in a Dump.
type DumpNote struct {
	Key          string `json:"key" yaml:"key"`
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Timestamp    string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
	Images       int    `json:"images" yaml:"images"`
	Status       string `json:"status" yaml:"status"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// DumpYAML writes the latest run to w as YAML. opts.RunID is ignored; the
// other filters apply to the notes.
func (s *Store) DumpYAML(ctx context.Context, opts QueryOptions, w io.Writer) error {
	d, err := s.dump(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// DumpJSON writes the latest run (filtered by opts) to w as indented JSON.
func (s *Store) DumpJSON(ctx context.Context, opts QueryOptions, w io.Writer) error {
	d, err := s.dump(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) dump(ctx context.Context, opts QueryOptions) (Dump, error) {
	run, err := s.LastRun(ctx)
	if err != nil {
		return Dump{}, err
	}
	opts.RunID = run.ID

	notes, err := s.Notes(ctx, opts)
	if err != nil {
		return Dump{}, fmt.Errorf("querying for dump: %w", err)
	}

	d := Dump{Run: run, Notes: make([]DumpNote, len(notes))}
	for i, n := range notes {
		d.Notes[i] = DumpNote{
			Key:          n.Key,
			ID:           n.ID,
			Title:        n.Title,
			MarkdownPath: n.MarkdownPath,
			Images:       n.Images,
			Status:       string(n.Status),
			Error:        n.Error,
		}
		if !n.Timestamp.IsZero() {
			d.Notes[i].Timestamp = n.Timestamp.Format(noteTimeLayout)
		}
	}
	return d, nil
}
