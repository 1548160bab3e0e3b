// Package githubrelease resolves chart versions from a GitHub project's
// latest release.
package githubrelease

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// Adapter implements ports.ResolverPort for OCI charts that are versioned
// by the releases of a GitHub repository.
type Adapter struct {
	client *gogithub.Client
	logger *slog.Logger
}

// New creates a release feed resolver.
func New(client *gogithub.Client, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

// Resolve returns the tag of the project's latest release. The tag is
// taken verbatim; GitHub's "latest" already excludes drafts and prereleases.
func (a *Adapter) Resolve(ctx context.Context, c domain.Classification) (domain.ResolvedVersion, error) {
	chart := c.Source.Chart
	if c.Kind != domain.SourceOCIGitHubBacked {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: %w", chart, domain.ErrUnsupportedSource)
	}
	owner, repo := c.Feed.Owner, c.Feed.Repo

	a.logger.Debug("fetching latest release", "chart", chart, "owner", owner, "repo", repo)
	release, _, err := a.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: fetching latest release of %s/%s: %w", chart, owner, repo, err)
	}

	tag := release.GetTagName()
	if tag == "" {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: latest release of %s/%s has no tag_name", chart, owner, repo)
	}
	return domain.ResolvedVersion{Chart: chart, Version: tag}, nil
}
