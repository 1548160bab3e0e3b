package ports

import (
	"context"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// ReconcileUseCase is the driving port for running one reconciliation pass
// over the manifests found in the given directories.
type ReconcileUseCase interface {
	Run(ctx context.Context, dirs []string) (domain.Report, error)
}

// BuildUseCase is the driving port for syncing the collection pin and
// packaging the collection.
type BuildUseCase interface {
	Build(ctx context.Context, target domain.BuildTarget) (domain.BuildResult, error)
}
