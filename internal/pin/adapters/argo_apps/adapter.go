// Package argoapps reads Argo CD Application manifests and extracts the
// Helm chart source they pin.
package argoapps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

const (
	apiGroupPrefix  = "argoproj.io/"
	applicationKind = "Application"
)

// Adapter implements ports.ManifestParserPort.
type Adapter struct {
	fs afero.Fs
}

// New creates a manifest parser reading from fs. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Adapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Adapter{fs: fs}
}

type header struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

type application struct {
	Spec *struct {
		Source *struct {
			RepoURL        string  `yaml:"repoURL"`
			Chart          string  `yaml:"chart"`
			Path           string  `yaml:"path"`
			TargetRevision *string `yaml:"targetRevision"`
		} `yaml:"source"`
	} `yaml:"spec"`
}

// Parse loads path as an Argo CD Application.
//
// Missing files, invalid YAML and documents that are not argoproj.io
// Applications return domain.ErrNotApplication. Applications without a
// usable spec.source, or whose source names neither a chart nor a
// repository path, return a *domain.ManifestError.
func (a *Adapter) Parse(path string) (domain.ManifestRecord, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return domain.ManifestRecord{}, fmt.Errorf("reading %s: %w", path, domain.ErrNotApplication)
	}

	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return domain.ManifestRecord{}, fmt.Errorf("decoding %s: %w", path, domain.ErrNotApplication)
	}
	if !strings.HasPrefix(h.APIVersion, apiGroupPrefix) || h.Kind != applicationKind {
		return domain.ManifestRecord{}, domain.ErrNotApplication
	}

	var app application
	if err := yaml.Unmarshal(data, &app); err != nil {
		return domain.ManifestRecord{}, &domain.ManifestError{Path: path, Err: err}
	}
	if app.Spec == nil {
		return domain.ManifestRecord{}, &domain.ManifestError{Path: path, Err: errors.New("missing required field: spec")}
	}
	if app.Spec.Source == nil {
		return domain.ManifestRecord{}, &domain.ManifestError{Path: path, Err: errors.New("missing required field: spec.source")}
	}

	src := app.Spec.Source
	if src.Chart == "" && src.Path == "" {
		return domain.ManifestRecord{}, &domain.ManifestError{Path: path, Err: errors.New("missing required field: spec.source.chart")}
	}
	revision := domain.DefaultTargetRevision
	if src.TargetRevision != nil {
		revision = *src.TargetRevision
	}

	return domain.ManifestRecord{
		Path:       path,
		APIVersion: h.APIVersion,
		Kind:       h.Kind,
		Source: domain.ChartSource{
			RepoURL:        src.RepoURL,
			Chart:          src.Chart,
			TargetRevision: revision,
		},
	}, nil
}

// Eligible reports whether the record tracks an externally published chart:
// a chart name and a repoURL with a supported scheme. Ineligible records
// are dropped without being reported.
func Eligible(rec domain.ManifestRecord) bool {
	return rec.Source.Chart != "" && domain.HasTrackableScheme(rec.Source.RepoURL)
}

// Eligible implements the parser port's eligibility filter.
func (a *Adapter) Eligible(rec domain.ManifestRecord) bool {
	return Eligible(rec)
}
