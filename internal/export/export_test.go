// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qquill2md/internal/backup"
	"github.com/pdiddy/qquill2md/pkg/types"
)

var imageBytes = []byte("not really a jpeg, but bytes all the same")

func testConfig(t *testing.T) types.ExportConfig {
	t.Helper()
	return types.ExportConfig{
		InputPath: "backup.json",
		OutputDir: filepath.Join(t.TempDir(), "qquill"),
		Fields:    []string{"id", "title"},
	}
}

func loadBackup(t *testing.T, content string) *types.Backup {
	t.Helper()
	b, err := backup.Parse("backup.json", []byte(content))
	require.NoError(t, err)
	return b
}

var threeNotes = `{"marks": {
	"20240115103000": {"id": "abc123", "title": "Test", "content": "Hello", "elements": {}, "el_depth": {}},
	"20240116080000": {"id": "def456", "title": "Photos", "content": "Look",
		"pictures": {"photos": {"p1": {"base64": "data:image/jpeg;base64,` + base64.StdEncoding.EncodeToString(imageBytes) + `"}}},
		"elements": {"e1": {"element": "text", "id": "e1", "content": "child",
			"pictures": {"photos": {"p9": {"base64": "` + base64.StdEncoding.EncodeToString(imageBytes) + `", "extension": "png"}}}}},
		"el_depth": {"e1": 1}},
	"20240117000000": {"id": "ghi789", "title": "Plain", "content": ""}
}}`

// memRecorder collects note records in memory.
type memRecorder struct {
	records []types.NoteRecord
	err     error
}

func (m *memRecorder) Record(_ context.Context, rec types.NoteRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func TestExportAll(t *testing.T) {
	cfg := testConfig(t)
	var log bytes.Buffer

	summary, err := New(cfg, nil).ExportAll(context.Background(), loadBackup(t, threeNotes), &log)
	require.NoError(t, err)

	assert.Equal(t, []string{"abc123", "def456", "ghi789"}, summary.Exported)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 2, summary.Images)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	var md int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".md") {
			md++
		}
	}
	assert.Equal(t, 3, md, "one markdown file per mark")

	data, err := os.ReadFile(filepath.Join(cfg.ResourcesDir(), "def456_p1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, imageBytes, data)
	assert.FileExists(t, filepath.Join(cfg.ResourcesDir(), "def456_element_e1_p9.png"))

	note, err := os.ReadFile(filepath.Join(cfg.OutputDir, "def456.md"))
	require.NoError(t, err)
	assert.Contains(t, string(note), "## Images\n![p1](resources/def456_p1.jpg)\n")
	assert.Contains(t, string(note), "- text\n\tchild\n\t![p9](resources/def456_element_e1_p9.png)\n")

	assert.Contains(t, log.String(), "exported: def456 (2 images)")
}

func TestExportAll_WorkedExample(t *testing.T) {
	cfg := testConfig(t)
	b := loadBackup(t, `{"marks": {"20240115103000": {"id": "abc123", "title": "Test", "content": "Hello", "elements": {}, "el_depth": {}}}}`)

	_, err := New(cfg, nil).ExportAll(context.Background(), b, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "abc123.md"))
	require.NoError(t, err)
	assert.Equal(t,
		"---\nid: abc123\ntitle: Test\n---\n\n# Test\n2024-01-15T10:30:00\n\nHello\n\n## Element Section\n\n",
		string(data))
}

func TestExportAll_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	b := loadBackup(t, threeNotes)
	e := New(cfg, nil)

	_, err := e.ExportAll(context.Background(), b, &bytes.Buffer{})
	require.NoError(t, err)
	first := readTree(t, cfg.OutputDir)

	_, err = e.ExportAll(context.Background(), b, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, first, readTree(t, cfg.OutputDir))
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[path] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestExportAll_IsolatesFailingNotes(t *testing.T) {
	cfg := testConfig(t)
	rec := &memRecorder{}
	b := loadBackup(t, `{"marks": {
		"bad-key": {"id": "n1", "title": "Bad key", "pictures": {"photos": {"p": {"base64": "AAAA"}}}},
		"20240115103000": {"id": "n2", "title": "Good"},
		"20240115103001": "not an object",
		"20240115103002": {"title": "No id"}
	}}`)
	var log bytes.Buffer

	summary, err := New(cfg, nil, WithRecorder(rec)).ExportAll(context.Background(), b, &log)
	require.NoError(t, err)

	assert.Equal(t, []string{"n2"}, summary.Exported)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, []string{"bad-key", "20240115103001", "20240115103002"}, summary.FailedKeys())
	assert.Equal(t, types.TimestampInvalid, types.KindOf(summary.Failed[0].Err))
	assert.Equal(t, "n1", summary.Failed[0].ID)
	assert.Equal(t, types.NoteInvalid, types.KindOf(summary.Failed[1].Err))

	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "n1.md"))
	assert.NoFileExists(t, filepath.Join(cfg.ResourcesDir(), "n1_p.jpg"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "n2.md"))
	assert.Contains(t, log.String(), "failed:   bad-key")

	require.Len(t, rec.records, 4)
	assert.Equal(t, types.StatusFailed, rec.records[0].Status)
	assert.NotEmpty(t, rec.records[0].Error)
	assert.Equal(t, types.StatusExported, rec.records[1].Status)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "n2.md"), rec.records[1].MarkdownPath)
}

func TestExportAll_BrokenImageStillWritesNote(t *testing.T) {
	cfg := testConfig(t)
	b := loadBackup(t, `{"marks": {"20240115103000": {"id": "n", "title": "T", "content": "C",
		"pictures": {"photos": {"bad": {"base64": "***"}}}}}}`)

	summary, err := New(cfg, nil).ExportAll(context.Background(), b, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, summary.Exported)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "n.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## Images")
	assert.NotContains(t, string(data), "resources/")
}

func TestExportAll_RecorderErrorsDoNotFailExport(t *testing.T) {
	cfg := testConfig(t)
	rec := &memRecorder{err: errors.New("disk full")}

	summary, err := New(cfg, nil, WithRecorder(rec)).ExportAll(context.Background(), loadBackup(t, threeNotes), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, summary.Exported, 3)
	assert.Len(t, rec.records, 3)
}

func TestExportAll_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(cfg, nil).ExportAll(ctx, loadBackup(t, threeNotes), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Total())
}

func TestPrepare_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg, nil)

	require.NoError(t, e.Prepare())
	require.NoError(t, e.Prepare())
	assert.DirExists(t, cfg.ResourcesDir())
}

func TestExportAll_OutOfRangeDepthFailsOnlyThatNote(t *testing.T) {
	cfg := testConfig(t)
	b := loadBackup(t, `{"marks": {
		"20240115103000": {"id": "deep", "title": "Deep", "elements": {"e": {"element": "text", "content": "x"}}, "el_depth": {"e": 1e12}},
		"20240115103001": {"id": "ok", "title": "Fine"}
	}}`)

	summary, err := New(cfg, nil).ExportAll(context.Background(), b, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, summary.Exported)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, types.NoteInvalid, types.KindOf(summary.Failed[0].Err))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "deep.md"))
}
