// Package helmindex resolves chart versions from a Helm repository's index.yaml.
package helmindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"helm.sh/helm/v3/pkg/repo"
	"sigs.k8s.io/yaml"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// maxIndexSize bounds how much of an index body is read.
const maxIndexSize = 64 << 20

// Adapter implements ports.ResolverPort for HTTP(S) Helm repositories by
// downloading index.yaml directly.
type Adapter struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates an index resolver. The client should carry the request timeout.
func New(client *http.Client, userAgent string, logger *slog.Logger) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Adapter{client: client, userAgent: userAgent, logger: logger}
}

// Resolve fetches <repoURL>/index.yaml and returns the first entry for the
// chart whose version is a release. Index order is kept; entries are not
// re-sorted.
func (a *Adapter) Resolve(ctx context.Context, c domain.Classification) (domain.ResolvedVersion, error) {
	chart := c.Source.Chart
	indexURL := strings.TrimRight(c.Source.RepoURL, "/") + "/index.yaml"

	index, err := a.fetchIndex(ctx, indexURL)
	if err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: %w", chart, err)
	}

	versions := make([]string, 0, len(index.Entries[chart]))
	for _, cv := range index.Entries[chart] {
		if cv == nil || cv.Metadata == nil {
			continue
		}
		versions = append(versions, cv.Version)
	}

	eligible := domain.EligibleVersions(versions)
	a.logger.Debug("index entries filtered",
		"chart", chart,
		"published", len(versions),
		"eligible", len(eligible),
	)
	if len(eligible) == 0 {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s in %s: %w", chart, indexURL, domain.ErrNoEligibleVersion)
	}

	return domain.ResolvedVersion{Chart: chart, Version: eligible[0]}, nil
}

func (a *Adapter) fetchIndex(ctx context.Context, indexURL string) (*repo.IndexFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating index request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	a.logger.Debug("fetching repository index", "url", indexURL)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching repository index %s: %w", indexURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching repository index %s: unexpected status %d", indexURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexSize))
	if err != nil {
		return nil, fmt.Errorf("reading repository index %s: %w", indexURL, err)
	}

	// repo.LoadIndexFile would sort entries by semver; upstream order is authoritative here.
	var index repo.IndexFile
	if err := yaml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("parsing repository index %s: %w", indexURL, err)
	}
	if index.Entries == nil {
		return nil, fmt.Errorf("parsing repository index %s: no entries", indexURL)
	}
	return &index, nil
}
