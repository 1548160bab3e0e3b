// Package projectfile loads the .chart-pin.yaml project file.
package projectfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/chart-pin/api"
	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// DefaultPath is where the project file is looked up.
const DefaultPath = ".chart-pin.yaml"

// Project is the project file with defaults applied.
type Project struct {
	Directories []string // empty when the file does not set any
	OCISources  []domain.OCISource
	Build       domain.BuildTarget
}

// Defaults returns the settings used when no project file exists.
func Defaults() Project {
	return Project{
		OCISources: domain.DefaultOCISources(),
		Build: domain.BuildTarget{
			GalaxyPath: domain.DefaultGalaxyPath,
			PinPath:    domain.DefaultPinPath,
			PinKey:     domain.DefaultPinKey,
		},
	}
}

// Load reads path from fs. A missing file yields Defaults. Unknown keys
// and malformed entries are reported as *domain.ConfigError.
func Load(fs afero.Fs, path string) (Project, error) {
	p := Defaults()

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("reading project file %s: %w", path, err)
	}

	var file api.ProjectFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return p, &domain.ConfigError{Entry: path, Err: err}
	}

	p.Directories = file.Directories
	if file.OCISources != nil {
		p.OCISources = make([]domain.OCISource, 0, len(file.OCISources))
		for _, s := range file.OCISources {
			p.OCISources = append(p.OCISources, domain.OCISource{Project: s.Project, ChartsDir: s.ChartsDir})
		}
	}
	if b := file.Build; b != nil {
		if b.GalaxyPath != "" {
			p.Build.GalaxyPath = b.GalaxyPath
		}
		if b.PinPath != "" {
			p.Build.PinPath = b.PinPath
		}
		if b.PinKey != "" {
			p.Build.PinKey = b.PinKey
		}
	}
	return p, nil
}
