package galaxybuild

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, files map[string]string, bin string) *Adapter {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return New(fs, bin, slog.New(slog.DiscardHandler))
}

func TestCollectionVersion(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        string
		errContains string
	}{
		{name: "string", content: "namespace: pokerops\nname: rke2\nversion: 1.4.2\n", want: "1.4.2"},
		{name: "quoted", content: "version: \"2.0.0\"\n", want: "2.0.0"},
		{name: "numeric-looking", content: "version: 1.0\n", want: "1.0"},
		{name: "missing", content: "namespace: pokerops\n", errContains: "collection version not found"},
		{name: "not a scalar", content: "version: [1, 2]\n", errContains: "collection version not found"},
		{name: "invalid yaml", content: "version: [\n", errContains: "decoding collection manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAdapter(t, map[string]string{"galaxy.yml": tt.content}, "")
			got, err := a.CollectionVersion("galaxy.yml")
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := newAdapter(t, nil, "").CollectionVersion("galaxy.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "galaxy.yml")
}

func TestPinnedRevision(t *testing.T) {
	const pinPath = "roles/components/defaults/main/argocd.yml"
	a := newAdapter(t, map[string]string{
		pinPath:      "---\n# revision of the apps repo\nrke2_argocd_apps_pokerops_revision: 1.4.1\nother: x\n",
		"empty.yml":  "rke2_argocd_apps_pokerops_revision: \"\"\n",
		"nested.yml": "rke2_argocd_apps_pokerops_revision:\n  value: 1.0.0\n",
	}, "")

	got, err := a.PinnedRevision(pinPath, "rke2_argocd_apps_pokerops_revision")
	require.NoError(t, err)
	assert.Equal(t, "1.4.1", got)

	for _, path := range []string{"empty.yml", "nested.yml"} {
		_, err := a.PinnedRevision(path, "rke2_argocd_apps_pokerops_revision")
		require.Error(t, err, path)
		assert.Contains(t, err.Error(), "rke2_argocd_apps_pokerops_revision not found in "+path)
	}

	_, err = a.PinnedRevision(pinPath, "missing_key")
	require.Error(t, err)
	_, err = a.PinnedRevision("absent.yml", "k")
	require.Error(t, err)
}

// fakeGalaxy writes a script that records its arguments and working
// directory, then exits with code.
func fakeGalaxy(t *testing.T, code string) (bin, log string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "ansible-galaxy")
	log = filepath.Join(dir, "calls.log")
	script := "#!/bin/sh\n" +
		"echo \"$(pwd -P) $*\" >> " + log + "\n" +
		"if [ " + code + " -ne 0 ]; then echo 'ERROR! galaxy.yml is invalid' >&2; exit " + code + "; fi\n" +
		"echo 'Created collection for pokerops.rke2 at /work/pokerops-rke2-1.4.2.tar.gz'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, log
}

func TestPackage(t *testing.T) {
	bin, log := fakeGalaxy(t, "0")
	work := t.TempDir()

	out, err := newAdapter(t, nil, bin).Package(context.Background(), work)
	require.NoError(t, err)
	assert.Equal(t, "Created collection for pokerops.rke2 at /work/pokerops-rke2-1.4.2.tar.gz", out)

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(work)
	require.NoError(t, err)
	assert.Equal(t, resolved+" collection build --force\n", string(calls))
}

func TestPackage_Failure(t *testing.T) {
	bin, _ := fakeGalaxy(t, "1")

	_, err := newAdapter(t, nil, bin).Package(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 1")
	assert.Contains(t, err.Error(), "galaxy.yml is invalid")
}

func TestPackage_MissingTool(t *testing.T) {
	_, err := newAdapter(t, nil, filepath.Join(t.TempDir(), "ansible-galaxy")).Package(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure Ansible is installed")
}
