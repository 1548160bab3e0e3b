// Package galaxybuild reads Ansible collection metadata and packages the
// collection with ansible-galaxy.
package galaxybuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultBin is the packaging tool looked up on PATH.
const DefaultBin = "ansible-galaxy"

// Adapter implements ports.CollectionPort and ports.PackagerPort.
type Adapter struct {
	fs     afero.Fs
	bin    string
	logger *slog.Logger
}

// New creates a collection adapter. A nil fs means the OS filesystem and
// an empty bin means DefaultBin.
func New(fs afero.Fs, bin string, logger *slog.Logger) *Adapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if bin == "" {
		bin = DefaultBin
	}
	return &Adapter{fs: fs, bin: bin, logger: logger}
}

type galaxyManifest struct {
	Namespace string    `yaml:"namespace"`
	Name      string    `yaml:"name"`
	Version   yaml.Node `yaml:"version"`
}

// CollectionVersion returns the version field of a galaxy.yml file.
func (a *Adapter) CollectionVersion(path string) (string, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading collection manifest %s: %w", path, err)
	}
	var m galaxyManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("decoding collection manifest %s: %w", path, err)
	}
	if m.Version.Kind != yaml.ScalarNode || m.Version.Value == "" {
		return "", fmt.Errorf("collection version not found in %s", path)
	}
	a.logger.Debug("read collection version", "collection", m.Namespace+"."+m.Name, "version", m.Version.Value)
	return m.Version.Value, nil
}

// PinnedRevision returns the top-level scalar key of a variables file.
func (a *Adapter) PinnedRevision(path, key string) (string, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	var vars map[string]yaml.Node
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	v, ok := vars[key]
	if !ok || v.Kind != yaml.ScalarNode || v.Value == "" {
		return "", fmt.Errorf("%s not found in %s", key, path)
	}
	return v.Value, nil
}

// Package runs "ansible-galaxy collection build --force" in dir.
func (a *Adapter) Package(ctx context.Context, dir string) (string, error) {
	bin, err := exec.LookPath(a.bin)
	if err != nil {
		return "", fmt.Errorf("%s not found, ensure Ansible is installed: %w", a.bin, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "collection", "build", "--force")
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("building collection in %s: exit code %d\nstderr: %s",
				dir, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("building collection in %s: %w", dir, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
