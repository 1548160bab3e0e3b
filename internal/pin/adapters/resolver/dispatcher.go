// Package resolver routes a classified chart source to the resolver for its
// publishing model.
package resolver

import (
	"context"
	"fmt"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/pin/ports"
)

// Dispatcher implements ports.ResolverPort with one resolver per SourceKind.
type Dispatcher struct {
	httpIndexed ports.ResolverPort
	releaseFeed ports.ResolverPort
}

// NewDispatcher wires the HTTP strategy (helm CLI or index) and the release feed.
func NewDispatcher(httpIndexed, releaseFeed ports.ResolverPort) *Dispatcher {
	return &Dispatcher{httpIndexed: httpIndexed, releaseFeed: releaseFeed}
}

// Resolve delegates to the resolver for c.Kind. Unsupported sources fail
// without any network or process call.
func (d *Dispatcher) Resolve(ctx context.Context, c domain.Classification) (domain.ResolvedVersion, error) {
	var r ports.ResolverPort
	switch c.Kind {
	case domain.SourceHTTPIndexed:
		r = d.httpIndexed
	case domain.SourceOCIGitHubBacked:
		r = d.releaseFeed
	}
	if r == nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s (%s): %w", c.Source.Chart, c.Source.RepoURL, domain.ErrUnsupportedSource)
	}
	return r.Resolve(ctx, c)
}
