// Package dirscan lists candidate manifest files in a directory.
package dirscan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Extensions scanned, in output order.
var Extensions = []string{".yaml", ".yml"}

// Adapter implements ports.ManifestSourcePort over an afero filesystem.
// Only direct children of a directory are listed.
type Adapter struct {
	fs afero.Fs
}

// New creates a directory scanner. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Adapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Adapter{fs: fs}
}

// List returns the YAML files directly under dir: all *.yaml files
// followed by all *.yml files, each group sorted by name. A missing
// directory yields no files.
func (a *Adapter) List(dir string) ([]string, error) {
	entries, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	byExt := make(map[string][]string, len(Extensions))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		byExt[ext] = append(byExt[ext], filepath.Join(dir, e.Name()))
	}

	var files []string
	for _, ext := range Extensions {
		group := byExt[ext]
		sort.Strings(group)
		files = append(files, group...)
	}
	return files, nil
}
