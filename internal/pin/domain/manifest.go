// Package domain holds the chart pin model: manifests, chart sources,
// source classification and reconciliation decisions.
package domain

import "strings"

// DefaultTargetRevision is used when an Application omits spec.source.targetRevision.
const DefaultTargetRevision = "HEAD"

// DefaultDirectories returns the manifest roots scanned when none are given.
func DefaultDirectories() []string {
	return []string{"argocd/applications", "argocd/templates"}
}

// Supported repository locator schemes.
const (
	SchemeHTTP  = "http://"
	SchemeHTTPS = "https://"
	SchemeOCI   = "oci://"
)

// ChartSource is the spec.source block of an Argo CD Application.
type ChartSource struct {
	RepoURL        string // may be empty
	Chart          string
	TargetRevision string // pinned version
}

// ManifestRecord is a parsed Application manifest. Identity is Path.
type ManifestRecord struct {
	Path       string
	APIVersion string
	Kind       string
	Source     ChartSource
}

// ResolvedVersion is the latest eligible version found upstream for a chart.
type ResolvedVersion struct {
	Chart   string
	Version string
}

// HasTrackableScheme reports whether the locator starts with one of the
// schemes the resolvers understand.
func HasTrackableScheme(repoURL string) bool {
	for _, scheme := range []string{SchemeHTTP, SchemeHTTPS, SchemeOCI} {
		if strings.HasPrefix(repoURL, scheme) {
			return true
		}
	}
	return false
}
