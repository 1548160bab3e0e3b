package ports

import (
	"context"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// ManifestSourcePort lists candidate manifest files under a root directory.
type ManifestSourcePort interface {
	List(dir string) ([]string, error)
}

// ManifestParserPort loads a candidate file as an Application manifest.
// It returns domain.ErrNotApplication for files that are not Applications
// and a *domain.ManifestError for malformed ones. Eligible reports whether
// a parsed record tracks an externally published chart.
type ManifestParserPort interface {
	Parse(path string) (domain.ManifestRecord, error)
	Eligible(rec domain.ManifestRecord) bool
}

// ResolverPort queries upstream for the latest eligible version of a
// classified chart source. Any error means the version is unknown.
type ResolverPort interface {
	Resolve(ctx context.Context, c domain.Classification) (domain.ResolvedVersion, error)
}

// PatcherPort applies a structural patch to a YAML file, preserving its
// formatting. With dryRun set the file is left untouched.
type PatcherPort interface {
	Apply(ctx context.Context, path string, patch map[string]any, dryRun bool) (domain.Change, error)
}

// DiffPort renders the difference between two versions of a file.
// Implementations that start a process stop it when ctx is done.
type DiffPort interface {
	ComputeDiff(ctx context.Context, baseName, headName string, base, head []byte) string
}

// CollectionPort reads the two versions the build keeps in sync.
type CollectionPort interface {
	CollectionVersion(path string) (string, error)
	PinnedRevision(path, key string) (string, error)
}

// PackagerPort builds the distributable collection rooted at dir and
// returns the tool's output.
type PackagerPort interface {
	Package(ctx context.Context, dir string) (string, error)
}
