// Package linediff renders manifest changes as unified diffs.
package linediff

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines around each hunk; a targetRevision bump shows its sibling keys.
const contextLines = 2

// Adapter implements ports.DiffPort with a line-based unified diff.
type Adapter struct{}

// New creates a line diff adapter.
func New() *Adapter {
	return &Adapter{}
}

// ComputeDiff returns the unified diff of base and head, or "" when they
// are identical.
func (a *Adapter) ComputeDiff(_ context.Context, baseName, headName string, base, head []byte) string {
	if string(base) == string(head) {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(base)),
		B:        difflib.SplitLines(string(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  contextLines,
	})
	if err != nil {
		return fmt.Sprintf("diff %s: %s", headName, err)
	}
	return strings.TrimRight(text, "\n")
}
