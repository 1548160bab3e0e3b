package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/distribution/reference"
)

// SourceKind is the publishing model of a chart source.
type SourceKind int

const (
	SourceUnsupported     SourceKind = iota // No resolver; always skipped
	SourceHTTPIndexed                       // Classic Helm repository over HTTP(S)
	SourceOCIGitHubBacked                   // OCI chart released alongside a GitHub project
)

// String returns the string representation of the SourceKind.
func (k SourceKind) String() string {
	if k < 0 || int(k) >= len(sourceKindNames) {
		return "Unknown"
	}
	return sourceKindNames[k]
}

var sourceKindNames = [...]string{
	SourceUnsupported:     "Unsupported",
	SourceHTTPIndexed:     "HTTPIndexed",
	SourceOCIGitHubBacked: "OCIGitHubBacked",
}

// ociRegistryHost is where GitHub-backed projects publish their charts.
const ociRegistryHost = "ghcr.io"

// Project is a GitHub repository whose releases version an OCI chart.
type Project struct {
	Owner string
	Repo  string
}

// KnownProjects lists the projects an OCI source entry may refer to.
var KnownProjects = map[string]Project{
	"grafana-operator": {Owner: "grafana", Repo: "grafana-operator"},
	"external-secrets": {Owner: "external-secrets", Repo: "external-secrets"},
}

// OCISource maps a known project to the charts directory it publishes under.
// The resulting locator is oci://ghcr.io/{owner}/{chartsDir}/{project}.
type OCISource struct {
	Project   string `yaml:"project"`
	ChartsDir string `yaml:"chartsDir"`
}

// DefaultOCISources is the built-in OCI source table.
func DefaultOCISources() []OCISource {
	return []OCISource{
		{Project: "grafana-operator", ChartsDir: "helm_charts"},
		{Project: "external-secrets", ChartsDir: "charts"},
	}
}

// Locator returns the oci:// reference for the entry. It assumes p is the entry's project.
func (s OCISource) Locator(p Project) string {
	return SchemeOCI + ociRegistryHost + "/" + p.Owner + "/" + s.ChartsDir + "/" + s.Project
}

// Classification is a chart source tagged with the strategy that can resolve it.
type Classification struct {
	Kind   SourceKind
	Source ChartSource
	Feed   Project // set for SourceOCIGitHubBacked
}

// Classifier decides which resolution strategy applies to a chart source.
type Classifier struct {
	oci map[string]Project // locator -> project
}

// NewClassifier validates the OCI source table and builds a Classifier.
// Every entry must name a known project, have a charts directory and
// produce a valid, unique OCI reference.
func NewClassifier(sources []OCISource) (*Classifier, error) {
	oci := make(map[string]Project, len(sources))
	for _, s := range sources {
		p, ok := KnownProjects[s.Project]
		if !ok {
			return nil, &ConfigError{
				Entry: s.Project,
				Err:   fmt.Errorf("unknown project (known: %s)", strings.Join(knownProjectNames(), ", ")),
			}
		}
		if s.ChartsDir == "" {
			return nil, &ConfigError{Entry: s.Project, Err: errors.New("missing chartsDir")}
		}
		locator := s.Locator(p)
		if _, err := reference.ParseNormalizedNamed(strings.TrimPrefix(locator, SchemeOCI)); err != nil {
			return nil, &ConfigError{Entry: s.Project, Err: fmt.Errorf("invalid OCI reference %s: %w", locator, err)}
		}
		if _, dup := oci[locator]; dup {
			return nil, &ConfigError{Entry: s.Project, Err: fmt.Errorf("duplicate locator %s", locator)}
		}
		oci[locator] = p
	}
	return &Classifier{oci: oci}, nil
}

// Classify tags src with the strategy that resolves it.
func (c *Classifier) Classify(src ChartSource) Classification {
	switch {
	case strings.HasPrefix(src.RepoURL, SchemeHTTP), strings.HasPrefix(src.RepoURL, SchemeHTTPS):
		return Classification{Kind: SourceHTTPIndexed, Source: src}
	}
	if p, ok := c.oci[src.RepoURL]; ok {
		return Classification{Kind: SourceOCIGitHubBacked, Source: src, Feed: p}
	}
	return Classification{Kind: SourceUnsupported, Source: src}
}

// Locators returns the OCI locators the classifier recognizes, sorted.
func (c *Classifier) Locators() []string {
	out := make([]string, 0, len(c.oci))
	for l := range c.oci {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func knownProjectNames() []string {
	names := make([]string, 0, len(KnownProjects))
	for n := range KnownProjects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
