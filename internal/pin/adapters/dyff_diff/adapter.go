// Package dyffdiff renders manifest changes as semantic YAML diffs using
// the dyff CLI.
package dyffdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// exitDifferences is dyff's exit code with --set-exit-code when the
// documents differ.
const exitDifferences = 1

// Adapter implements ports.DiffPort by shelling out to dyff.
type Adapter struct {
	bin string
}

// New creates a dyff adapter. An empty bin means "dyff" on PATH.
func New(bin string) *Adapter {
	if bin == "" {
		bin = "dyff"
	}
	return &Adapter{bin: bin}
}

// ComputeDiff returns dyff's report for base and head. It returns "" when
// dyff is unavailable, fails, finds no difference or ctx is done, so
// callers fall back to a line diff.
func (a *Adapter) ComputeDiff(ctx context.Context, baseName, headName string, base, head []byte) string {
	bin, err := exec.LookPath(a.bin)
	if err != nil {
		return ""
	}

	dir, err := os.MkdirTemp("", "chart-pin-dyff-*")
	if err != nil {
		return ""
	}
	defer os.RemoveAll(dir)

	from := filepath.Join(dir, "from.yaml")
	to := filepath.Join(dir, "to.yaml")
	if err := os.WriteFile(from, base, 0o600); err != nil {
		return ""
	}
	if err := os.WriteFile(to, head, 0o600); err != nil {
		return ""
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "between", "--omit-header", "--color=off", "--set-exit-code", from, to)
	cmd.Stdout = &stdout

	var exitErr *exec.ExitError
	switch err := cmd.Run(); {
	case err == nil, ctx.Err() != nil:
		return ""
	case errors.As(err, &exitErr) && exitErr.ExitCode() == exitDifferences:
	default:
		return ""
	}

	body := stripPaths(stdout.String(), dir)
	if body == "" {
		return ""
	}
	return fmt.Sprintf("--- %s\n+++ %s\n\n%s", baseName, headName, body)
}

// stripPaths drops lines that mention the scratch files and trims the
// surrounding blank lines.
func stripPaths(out, dir string) string {
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, dir) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n")
}
