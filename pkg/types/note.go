// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultPhotoExtension is used when a photo record carries no extension key.
	DefaultPhotoExtension = "jpg"

	// MaxElementDepth bounds el_depth values; deeper trees are rejected.
	MaxElementDepth = 64
)

// Backup is a loaded QQuill/SpellBook backup document.
type Backup struct {
	// Source is the path the backup was read from.
	Source string

	// Marks maps timestamp keys (YYYYMMDDHHMMSS) to raw note records, in
	// document order.
	Marks Ordered[json.RawMessage]
}

// Photo is one entry of a picture collection.
type Photo struct {
	// Base64 is the encoded payload, optionally behind a data-URL header.
	Base64 Text `json:"base64"`

	// Extension is nil when the key is absent (or null).
	Extension *Text `json:"extension"`

	// Name is the display name; nil when absent.
	Name *Text `json:"name"`
}

// ExtensionOrDefault returns the photo extension, falling back to
// DefaultPhotoExtension only when the key is absent.
func (p Photo) ExtensionOrDefault() string {
	if p.Extension == nil {
		return DefaultPhotoExtension
	}
	return p.Extension.String()
}

// NameOr returns the display name, or fallback when the key is absent.
func (p Photo) NameOr(fallback string) string {
	if p.Name == nil {
		return fallback
	}
	return p.Name.String()
}

// Pictures is a picture collection attached to a note or an element.
type Pictures struct {
	Photos Ordered[Photo] `json:"photos"`
}

// UnmarshalJSON implements json.Unmarshaler. Anything other than an object
// holding a photos object decodes to an empty collection.
func (p *Pictures) UnmarshalJSON(data []byte) error {
	*p = Pictures{}
	if !isObject(data) {
		return nil
	}
	var raw struct {
		Photos json.RawMessage `json:"photos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !isObject(raw.Photos) {
		return nil
	}
	return json.Unmarshal(raw.Photos, &p.Photos)
}

// Empty reports whether the collection has no photos.
func (p *Pictures) Empty() bool {
	return p == nil || p.Photos.Len() == 0
}

// Element is one node of a note's element tree.
type Element struct {
	// Type is the element kind shown in the bullet line (the "element" field).
	Type Text `json:"element"`

	// ID references the entry in Note.Elements that holds the content.
	ID Text `json:"id"`

	Content  Text      `json:"content"`
	Pictures *Pictures `json:"pictures"`
}

// Note is a decoded note record. Only the fields the renderer consumes are
// typed; Record keeps the whole object for front-matter lookups, including
// the tree bookkeeping fields (elements_selected, elements_row, el_tree,
// el_ids, el_parents, el_num_child) that are carried but never interpreted.
type Note struct {
	Record Record

	ID       string
	Title    string
	Content  string
	Pictures *Pictures

	// Elements maps element keys to element records in document order.
	Elements Ordered[Element]

	// Depth maps element keys to their nesting depth.
	Depth map[string]int
}

type noteFields struct {
	ID       *Text           `json:"id"`
	Title    Text            `json:"title"`
	Content  Text            `json:"content"`
	Pictures *Pictures       `json:"pictures"`
	Elements json.RawMessage `json:"elements"`
	ElDepth  json.RawMessage `json:"el_depth"`
}

// ErrNoteID is returned by DecodeNote when a record has no usable id.
var ErrNoteID = errors.New("note has no id")

// DecodeNote decodes one raw note record from the marks mapping.
func DecodeNote(raw json.RawMessage) (Note, error) {
	if !isObject(raw) {
		return Note{}, fmt.Errorf("note record is not a JSON object")
	}
	trimmed := bytes.TrimSpace(raw)

	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return Note{}, err
	}

	var f noteFields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return Note{}, err
	}
	if f.ID == nil || *f.ID == "" {
		return Note{}, ErrNoteID
	}

	var elements Ordered[Element]
	if isObject(f.Elements) {
		if err := json.Unmarshal(f.Elements, &elements); err != nil {
			return Note{}, fmt.Errorf("elements: %w", err)
		}
	}

	var rawDepth map[string]float64
	if isObject(f.ElDepth) {
		if err := json.Unmarshal(f.ElDepth, &rawDepth); err != nil {
			return Note{}, fmt.Errorf("el_depth: %w", err)
		}
	}
	depth := make(map[string]int, len(rawDepth))
	for k, d := range rawDepth {
		if d != math.Trunc(d) || d > MaxElementDepth {
			return Note{}, fmt.Errorf("el_depth %q: depth %v is not an integer in range", k, d)
		}
		depth[k] = int(d)
	}

	return Note{
		Record:   rec,
		ID:       f.ID.String(),
		Title:    f.Title.String(),
		Content:  f.Content.String(),
		Pictures: f.Pictures,
		Elements: elements,
		Depth:    depth,
	}, nil
}

// DepthOf returns the recorded depth of an element key. Missing or negative
// depths count as zero.
func (n Note) DepthOf(key string) int {
	d := n.Depth[key]
	if d < 0 {
		return 0
	}
	return d
}

// Resolve returns the element that carries the content and pictures for el:
// the entry referenced by el.ID when present, otherwise el itself.
func (n Note) Resolve(el Element) Element {
	if el.ID == "" {
		return el
	}
	if ref, ok := n.Elements.Get(el.ID.String()); ok {
		return ref
	}
	return el
}

// ExportStatus records the outcome of exporting one note.
type ExportStatus string

const (
	StatusExported ExportStatus = "exported"
	StatusFailed   ExportStatus = "failed"
)

// NoteRecord describes one exported (or failed) note.
type NoteRecord struct {
	// Key is the note's timestamp key in the marks mapping.
	Key string `json:"key" yaml:"key"`

	// ID is the note id; empty when the record could not be decoded.
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	// Timestamp is the decoded key. Zero when the key is invalid.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// MarkdownPath is the file written for the note.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	// Images is the number of image files written for the note.
	Images int `json:"images" yaml:"images"`

	Status ExportStatus `json:"status" yaml:"status"`

	// Error records the failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
