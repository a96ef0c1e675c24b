// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a decoded note into its Markdown document: front
// matter, title, timestamp, images, body, and the element section.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/qquill2md/internal/frontmatter"
	"github.com/pdiddy/qquill2md/internal/resources"
	"github.com/pdiddy/qquill2md/pkg/types"
)

const (
	// keyLayout is the layout of note keys in the marks mapping.
	keyLayout = "20060102150405"
	// isoLayout is the timezone-naive rendering of a note timestamp.
	isoLayout = "2006-01-02T15:04:05"

	elementSectionHeading = "## Element Section\n\n"
	imagesHeading         = "## Images"
)

// ImageWriter materializes a picture collection and returns its Markdown
// references. *resources.Materializer implements it.
type ImageWriter interface {
	Pictures(pics *types.Pictures, noteID, prefix string) []string
}

// Document is a rendered note.
type Document struct {
	Note      types.Note
	Timestamp time.Time
	Markdown  string
	// Images counts the references that made it into Markdown.
	Images int
}

// Renderer renders notes with a fixed front-matter field list.
type Renderer struct {
	fields []string
	images ImageWriter
}

// New returns a Renderer emitting fields in the front matter and writing
// images through images.
func New(fields []string, images ImageWriter) *Renderer {
	return &Renderer{fields: fields, images: images}
}

// ParseKey interprets a note key as YYYYMMDDHHMMSS. The result carries no
// meaningful zone: keys are wall-clock values and are kept that way.
func ParseKey(key string) (time.Time, error) {
	if len(key) != len(keyLayout) || strings.IndexFunc(key, notDigit) >= 0 {
		return time.Time{}, &types.Error{
			Kind:    types.TimestampInvalid,
			Subject: key,
			Err:     fmt.Errorf("want %d digits", len(keyLayout)),
		}
	}
	t, err := time.Parse(keyLayout, key)
	if err != nil {
		return time.Time{}, &types.Error{Kind: types.TimestampInvalid, Subject: key, Err: err}
	}
	return t, nil
}

// FormatTimestamp renders t as YYYY-MM-DDTHH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.Format(isoLayout)
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}

// Render builds the Markdown document for the note stored under key. The key
// is validated before any image is written, so a note with a bad key leaves
// nothing behind.
func (r *Renderer) Render(key string, note types.Note) (Document, error) {
	ts, err := ParseKey(key)
	if err != nil {
		return Document{}, err
	}

	fm, err := frontmatter.Generate(note.Record, r.fields)
	if err != nil {
		return Document{}, err
	}

	mainImages := r.images.Pictures(note.Pictures, note.ID, "")
	section, elementImages := r.ElementSection(note)

	parts := []string{fm, "# " + note.Title, FormatTimestamp(ts), ""}
	if len(mainImages) > 0 {
		parts = append(parts, imagesHeading, strings.Join(mainImages, "\n"), "")
	}
	parts = append(parts, note.Content, "", section)

	return Document{
		Note:      note,
		Timestamp: ts,
		Markdown:  strings.Join(parts, "\n"),
		Images:    len(mainImages) + elementImages,
	}, nil
}

// ElementSection renders the note's element tree as a flat list: each
// element is a "- <type>" line followed by its content and image references,
// every line indented by one tab per level of depth. It also returns the
// number of image references emitted.
func (r *Renderer) ElementSection(note types.Note) (string, int) {
	var b strings.Builder
	b.WriteString(elementSectionHeading)

	images := 0
	for key, el := range note.Elements.All() {
		depth := note.DepthOf(key)
		target := note.Resolve(el)

		b.WriteString("- " + el.Type.String() + "\n")
		b.WriteString(Indent(target.Content.String(), depth))
		b.WriteString("\n")

		refs := r.images.Pictures(target.Pictures, note.ID, resources.ElementPrefix(key))
		if len(refs) > 0 {
			b.WriteString(Indent(strings.Join(refs, "\n"), depth))
			b.WriteString("\n")
			images += len(refs)
		}
	}
	return b.String(), images
}

// Indent prefixes every line of text with depth tab characters.
func Indent(text string, depth int) string {
	if depth <= 0 {
		return text
	}
	prefix := strings.Repeat("\t", depth)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
