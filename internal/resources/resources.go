// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resources decodes base64 image payloads from a backup and writes
// them next to the exported notes.
package resources

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/qquill2md/pkg/types"
)

// ElementPrefix returns the filename prefix for images attached to the
// element stored under key.
func ElementPrefix(key string) string {
	return "element_" + key + "_"
}

// FileName builds the resource filename {noteID}_{prefix}{photoID}.{ext}.
func FileName(noteID, prefix, photoID, ext string) string {
	return fmt.Sprintf("%s_%s%s.%s", noteID, prefix, photoID, ext)
}

// Materializer writes decoded images into a single resources directory.
type Materializer struct {
	dir string
	log *zap.Logger
}

// New returns a Materializer writing into dir. A nil logger discards warnings.
func New(dir string, log *zap.Logger) *Materializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Materializer{dir: dir, log: log}
}

// Save decodes payload (an optional data-URL header is dropped up to the
// first comma) and writes it to dir/filename. It returns the reference path
// relative to the output directory.
func (m *Materializer) Save(payload, filename string) (string, error) {
	data, err := Decode(payload)
	if err != nil {
		return "", &types.Error{Kind: types.ImageWriteFailed, Subject: filename, Err: err}
	}
	if err := os.WriteFile(filepath.Join(m.dir, filename), data, 0o644); err != nil {
		return "", &types.Error{Kind: types.ImageWriteFailed, Subject: filename, Err: err}
	}
	return types.ResourcesDirName + "/" + filename, nil
}

// Pictures writes every photo of pics that carries a payload and returns
// their Markdown image references in collection order. Failed images are
// logged and left out; they never fail the caller.
func (m *Materializer) Pictures(pics *types.Pictures, noteID, prefix string) []string {
	if pics.Empty() {
		return nil
	}

	var refs []string
	for photoID, photo := range pics.Photos.All() {
		if photo.Base64 == "" {
			continue
		}
		filename := FileName(noteID, prefix, photoID, photo.ExtensionOrDefault())

		ref, err := m.Save(photo.Base64.String(), filename)
		if err != nil {
			m.log.Warn("skipping image",
				zap.String("file", filename),
				zap.String("note", noteID),
				zap.Error(err))
			continue
		}
		m.log.Debug("wrote image", zap.String("file", filename))
		refs = append(refs, fmt.Sprintf("![%s](%s)", photo.NameOr(photoID), ref))
	}
	return refs
}

// Decode strips an optional data-URL header and decodes the base64 body.
// Whitespace is ignored and missing padding is tolerated.
func Decode(payload string) ([]byte, error) {
	if _, body, ok := strings.Cut(payload, ","); ok {
		payload = body
	}
	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)

	if strings.HasSuffix(payload, "=") {
		return base64.StdEncoding.DecodeString(payload)
	}
	return base64.RawStdEncoding.DecodeString(payload)
}
