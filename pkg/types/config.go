// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"slices"
)

const (
	// DefaultOutputDir is the export directory used when none is configured.
	DefaultOutputDir = "./qquill"

	// ResourcesDirName is the subdirectory of the output directory for images.
	ResourcesDirName = "resources"

	// CatalogFile is the SQLite catalog written under the output directory.
	CatalogFile = "catalog.db"

	// EphemerisField is the front-matter field added by --ephemeris.
	EphemerisField = "ephemeris"
)

// DefaultFields returns the front-matter fields used when none are configured.
func DefaultFields() []string {
	return []string{"id", "title", "created_at", "tags"}
}

// ExportConfig holds the settings for one export run. It is built once by
// the CLI and passed by value to every stage.
type ExportConfig struct {
	// InputPath is the backup JSON file.
	InputPath string `json:"input" yaml:"input"`

	// OutputDir receives one Markdown file per note and the resources/ directory.
	OutputDir string `json:"output" yaml:"output"`

	// Fields lists the front-matter fields in output order.
	Fields []string `json:"fields" yaml:"fields"`

	// Verbose enables per-note progress lines.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Catalog records the run in OutputDir/catalog.db.
	Catalog bool `json:"catalog" yaml:"catalog"`
}

// ResourcesDir returns the directory images are written to.
func (c ExportConfig) ResourcesDir() string {
	return filepath.Join(c.OutputDir, ResourcesDirName)
}

// CatalogPath returns the catalog database location.
func (c ExportConfig) CatalogPath() string {
	return filepath.Join(c.OutputDir, CatalogFile)
}

// WithEphemeris returns a copy of c whose fields include EphemerisField.
func (c ExportConfig) WithEphemeris() ExportConfig {
	if slices.Contains(c.Fields, EphemerisField) {
		return c
	}
	c.Fields = append(slices.Clone(c.Fields), EphemerisField)
	return c
}
