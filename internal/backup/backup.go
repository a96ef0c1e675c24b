// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backup loads QQuill/SpellBook JSON backups.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pdiddy/qquill2md/pkg/types"
)

// marksKey is the top-level field holding the note records.
const marksKey = "marks"

// Load reads the backup at path and returns its marks mapping unmodified.
// It fails with NotFound when path does not exist, ParseError when the
// content is not a well-formed JSON object, and MissingData when marks is
// absent or empty. Note records are not validated here.
func Load(path string) (*types.Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.Error{Kind: types.NotFound, Subject: path, Err: err}
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes backup content already in memory. source is used in errors.
func Parse(source string, data []byte) (*types.Backup, error) {
	var top types.Record
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &types.Error{Kind: types.ParseError, Subject: source, Err: err}
	}

	raw, ok := top.Lookup(marksKey)
	if !ok {
		return nil, &types.Error{Kind: types.MissingData, Subject: source}
	}

	b := &types.Backup{Source: source}
	if err := json.Unmarshal(raw, &b.Marks); err != nil {
		return nil, &types.Error{Kind: types.ParseError, Subject: source, Err: fmt.Errorf("marks: %w", err)}
	}
	if b.Marks.Len() == 0 {
		return nil, &types.Error{Kind: types.MissingData, Subject: source}
	}
	return b, nil
}
