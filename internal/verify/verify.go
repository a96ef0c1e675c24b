// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify checks an export directory after the fact: every note must
// have readable front matter, and every image it links under resources/ must
// exist on disk.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/qquill2md/pkg/types"
)

// notesPattern matches exported notes anywhere below the export directory.
const notesPattern = "**/*.md"

// Problem is one defect found in an exported note.
type Problem struct {
	File    string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.File, p.Message)
}

// Report summarizes a verification run.
type Report struct {
	Notes    int
	Images   int
	Problems []Problem
}

// OK reports whether no problems were found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Dir verifies every note under dir, skipping the resources directory.
// Progress lines for notes with problems are written to w.
func Dir(dir string, w io.Writer) (Report, error) {
	var report Report

	if _, err := os.Stat(dir); err != nil {
		return report, fmt.Errorf("export directory %s: %w", dir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), notesPattern)
	if err != nil {
		return report, fmt.Errorf("listing notes in %s: %w", dir, err)
	}

	md := goldmark.New()
	for _, rel := range matches {
		if rel == types.ResourcesDirName || strings.HasPrefix(rel, types.ResourcesDirName+"/") {
			continue
		}

		report.Notes++
		images, problems := checkNote(md, dir, rel)
		report.Images += images
		for _, p := range problems {
			fmt.Fprintf(w, "problem: %s\n", p)
		}
		report.Problems = append(report.Problems, problems...)
	}

	return report, nil
}

// checkNote parses one note and returns how many image links it holds and
// what is wrong with it.
func checkNote(md goldmark.Markdown, dir, rel string) (int, []Problem) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return 0, []Problem{{File: rel, Message: err.Error()}}
	}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return 0, []Problem{{File: rel, Message: fmt.Sprintf("front matter: %v", err)}}
	}

	var (
		problems []Problem
		images   int
	)
	doc := md.Parser().Parse(text.NewReader(body))
	walkErr := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		img, ok := n.(*ast.Image)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		images++

		dest := string(img.Destination)
		if !isLocal(dest) {
			return ast.WalkContinue, nil
		}
		target := filepath.Join(dir, filepath.FromSlash(path.Join(path.Dir(rel), dest)))
		if _, err := os.Stat(target); err != nil {
			problems = append(problems, Problem{File: rel, Message: fmt.Sprintf("missing image %s", dest)})
		}
		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		problems = append(problems, Problem{File: rel, Message: walkErr.Error()})
	}
	return images, problems
}

// isLocal reports whether an image destination refers to a file in the
// export rather than a URL.
func isLocal(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "data:") {
		return false
	}
	return !strings.Contains(dest, "://")
}
