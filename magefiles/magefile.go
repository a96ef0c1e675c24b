//go:build mage

// Package main contains Mage build targets for qquill2md developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "qquill2md"
	cmdPkg  = "./cmd/qquill2md"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Export converts the backup named by $QQUILL_BACKUP into $QQUILL_OUTPUT
// (default ./qquill) with the freshly built binary, then verifies the result.
func Export() error {
	mg.Deps(Build)

	input := os.Getenv("QQUILL_BACKUP")
	if input == "" {
		return fmt.Errorf("QQUILL_BACKUP is not set")
	}
	output := os.Getenv("QQUILL_OUTPUT")
	if output == "" {
		output = "./qquill"
	}

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, input, "--output", output, "--catalog", "--verbose"); err != nil {
		return err
	}
	return sh.RunV(bin, "verify", output)
}

// Stats prints Go line counts for production code and tests.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	return nil
}

// countGoLines counts non-blank lines in the module's Go files, outside
// vendored reference trees.
func countGoLines(root string) (prod, tests int, err error) {
	files, err := doublestar.Glob(os.DirFS(root), "**/*.go")
	if err != nil {
		return 0, 0, fmt.Errorf("listing Go files: %w", err)
	}
	for _, rel := range files {
		if strings.HasPrefix(rel, "_") || strings.Contains(rel, "/_") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return 0, 0, fmt.Errorf("reading %s: %w", rel, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(rel, "_test.go") {
			tests += n
		} else {
			prod += n
		}
	}
	return prod, tests, nil
}
