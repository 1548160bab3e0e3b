package dirscan

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_List(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "argocd/applications"
	for _, name := range []string{"b.yaml", "a.yml", "a.yaml", "README.md", "c.json"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte("x: 1\n"), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "nested", "deep.yaml"), []byte("x: 1\n"), 0o644))

	files, err := New(fs).List(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "a.yml"),
	}, files)
}

func TestAdapter_ListMissingDir(t *testing.T) {
	files, err := New(afero.NewMemMapFs()).List("does/not/exist")
	require.NoError(t, err)
	assert.Empty(t, files)
}
