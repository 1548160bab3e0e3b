// Package yamlpatch applies structural patches to YAML files while
// preserving comments, ordering, quoting and layout.
package yamlpatch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// Adapter implements ports.PatcherPort over an afero filesystem.
type Adapter struct {
	fs afero.Fs
}

// New creates a patcher. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Adapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Adapter{fs: fs}
}

// Apply re-reads path, merges patch into it and writes the result back
// atomically. With dryRun set, or when nothing changes, the file is not
// written; the returned Change still carries the would-be content.
func (a *Adapter) Apply(ctx context.Context, path string, patch map[string]any, dryRun bool) (domain.Change, error) {
	before, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return domain.Change{}, fmt.Errorf("reading %s: %w", path, err)
	}

	after, err := Patch(before, patch)
	if err != nil {
		return domain.Change{}, fmt.Errorf("patching %s: %w", path, err)
	}

	change := domain.Change{Path: path, Before: before, After: after}
	if dryRun || !change.Changed() {
		return change, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Change{}, fmt.Errorf("writing %s: %w", path, err)
	}

	if err := a.writeAtomic(path, after); err != nil {
		return domain.Change{}, err
	}
	return change, nil
}

// writeAtomic writes data next to path and renames it into place,
// keeping the original file mode.
func (a *Adapter) writeAtomic(path string, data []byte) error {
	info, err := a.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := afero.TempFile(a.fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = a.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := a.fs.Chmod(tmpName, info.Mode().Perm()); err != nil {
		cleanup()
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := a.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
