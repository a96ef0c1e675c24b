// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportConfig_WithEphemeris(t *testing.T) {
	base := ExportConfig{Fields: []string{"id", "title"}}

	got := base.WithEphemeris()
	assert.Equal(t, []string{"id", "title", "ephemeris"}, got.Fields)
	assert.Equal(t, []string{"id", "title"}, base.Fields, "receiver must not change")

	again := got.WithEphemeris()
	assert.Equal(t, []string{"id", "title", "ephemeris"}, again.Fields)
}

func TestExportConfig_Paths(t *testing.T) {
	cfg := ExportConfig{OutputDir: "out"}
	assert.Equal(t, filepath.Join("out", "resources"), cfg.ResourcesDir())
	assert.Equal(t, filepath.Join("out", "catalog.db"), cfg.CatalogPath())
	assert.Equal(t, []string{"id", "title", "created_at", "tags"}, DefaultFields())
}
