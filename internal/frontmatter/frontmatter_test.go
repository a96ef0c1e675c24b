// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontmatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qquill2md/pkg/types"
)

func record(t *testing.T, s string) types.Record {
	t.Helper()
	var rec types.Record
	require.NoError(t, json.Unmarshal([]byte(s), &rec))
	return rec
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		record string
		fields []string
		want   string
	}{
		{
			name:   "scalar fields in requested order",
			record: `{"title": "Test", "id": "abc123", "content": "Hello"}`,
			fields: []string{"id", "title"},
			want:   "---\nid: abc123\ntitle: Test\n---\n",
		},
		{
			name:   "absent fields are omitted",
			record: `{"id": "abc123"}`,
			fields: []string{"id", "title", "created_at", "tags"},
			want:   "---\nid: abc123\n---\n",
		},
		{
			name:   "no fields present",
			record: `{"content": "x"}`,
			fields: []string{"id"},
			want:   "---\n---\n",
		},
		{
			name:   "numbers booleans and null",
			record: `{"created_at": 1705314600000, "pinned": true, "score": 1.5, "tags": null}`,
			fields: []string{"created_at", "pinned", "score", "tags"},
			want:   "---\ncreated_at: 1705314600000\npinned: true\nscore: 1.5\ntags: null\n---\n",
		},
		{
			name:   "arrays are flow sequences",
			record: `{"tags": ["work", "ideas"]}`,
			fields: []string{"tags"},
			want:   "---\ntags: [work, ideas]\n---\n",
		},
		{
			name:   "nested object keeps key order",
			record: `{"ephemeris": {"sun": "Capricorn", "moon": {"sign": "Leo", "phase": 0.25}}}`,
			fields: []string{"ephemeris"},
			want: "---\n" +
				"ephemeris:\n" +
				"  sun: Capricorn\n" +
				"  moon:\n" +
				"    sign: Leo\n" +
				"    phase: 0.25\n" +
				"---\n",
		},
		{
			name:   "nested strings that look like other types are quoted",
			record: `{"meta": {"flag": "true", "n": "12"}}`,
			fields: []string{"meta"},
			want:   "---\nmeta:\n  flag: \"true\"\n  n: \"12\"\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(record(t, tt.record), tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_EmptyNestedObject(t *testing.T) {
	got, err := Generate(record(t, `{"meta": {}}`), []string{"meta"})
	require.NoError(t, err)
	assert.Equal(t, "---\nmeta: {}\n---\n", got)
}

func TestGenerate_StringsThatWouldBreakTheBlock(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain", title: "Hello, world", want: "title: Hello, world\n"},
		{name: "colon space", title: "Re: notes", want: "title: \"Re: notes\"\n"},
		{name: "comment marker", title: "C# is #1", want: "title: \"C# is #1\"\n"},
		{name: "newline", title: "two\nlines", want: "title: \"two\\nlines\"\n"},
		{name: "flow sequence text", title: "[draft]", want: "title: \"[draft]\"\n"},
		{name: "bool-like string stays verbatim", title: "true", want: "title: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(map[string]string{"title": tt.title})
			require.NoError(t, err)

			got, err := Generate(record(t, string(raw)), []string{"title"})
			require.NoError(t, err)
			assert.Equal(t, "---\n"+tt.want+"---\n", got)

			var meta map[string]any
			body := strings.TrimSuffix(strings.TrimPrefix(got, "---\n"), "---\n")
			require.NoError(t, yaml.Unmarshal([]byte(body), &meta))
		})
	}
}
