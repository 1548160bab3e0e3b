package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/pin/ports"
)

// BuildService implements ports.BuildUseCase: it makes the pinned
// revision follow the collection version, then packages the collection.
type BuildService struct {
	collection ports.CollectionPort
	patcher    ports.PatcherPort
	packager   ports.PackagerPort
	diff       ports.DiffPort
	logger     *slog.Logger
}

// NewBuildService creates a BuildService.
func NewBuildService(
	collection ports.CollectionPort,
	patcher ports.PatcherPort,
	packager ports.PackagerPort,
	diff ports.DiffPort,
	logger *slog.Logger,
) *BuildService {
	return &BuildService{
		collection: collection,
		patcher:    patcher,
		packager:   packager,
		diff:       diff,
		logger:     logger,
	}
}

// Build syncs the pin and runs the packager. Every error is fatal to the
// build; nothing is packaged after a failure.
func (s *BuildService) Build(ctx context.Context, target domain.BuildTarget) (domain.BuildResult, error) {
	var res domain.BuildResult

	version, err := s.collection.CollectionVersion(target.GalaxyPath)
	if err != nil {
		return res, err
	}
	res.Version = version

	pinned, err := s.collection.PinnedRevision(target.PinPath, target.PinKey)
	if err != nil {
		return res, err
	}
	res.PreviousPin = pinned

	if pinned != version {
		s.logger.Info("updating pinned revision", "path", target.PinPath, "key", target.PinKey, "from", pinned, "to", version)
		change, err := s.patcher.Apply(ctx, target.PinPath, domain.PinPatch(target.PinKey, version), false)
		if err != nil {
			return res, fmt.Errorf("updating %s in %s: %w", target.PinKey, target.PinPath, err)
		}
		res.PinUpdated = true
		if s.diff != nil {
			res.Diff = s.diff.ComputeDiff(ctx, target.PinPath+" ("+pinned+")", target.PinPath+" ("+version+")", change.Before, change.After)
		}
	} else {
		s.logger.Info("pinned revision already up to date", "path", target.PinPath, "version", version)
	}

	s.logger.Info("building collection", "version", version)
	out, err := s.packager.Package(ctx, filepath.Dir(target.GalaxyPath))
	if err != nil {
		return res, err
	}
	res.Output = out
	s.logger.Info("collection built", "version", version)
	return res, nil
}
