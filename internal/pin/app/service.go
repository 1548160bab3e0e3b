// Package app orchestrates a reconciliation pass over Argo CD Application
// manifests.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/pin/ports"
)

// Service implements ports.ReconcileUseCase. It walks manifests one at a
// time; a failing manifest is recorded and the pass moves on.
type Service struct {
	source       ports.ManifestSourcePort
	parser       ports.ManifestParserPort
	classifier   *domain.Classifier
	resolver     ports.ResolverPort
	patcher      ports.PatcherPort
	semanticDiff ports.DiffPort // optional, e.g. dyff
	unifiedDiff  ports.DiffPort // line-based fallback
	dryRun       bool
	logger       *slog.Logger
	tracer       trace.Tracer

	manifests       metric.Int64Counter
	resolveDuration metric.Float64Histogram
}

// NewService creates a Service wired with all driven ports. semanticDiff
// may be nil.
func NewService(
	source ports.ManifestSourcePort,
	parser ports.ManifestParserPort,
	classifier *domain.Classifier,
	resolver ports.ResolverPort,
	patcher ports.PatcherPort,
	semanticDiff ports.DiffPort,
	unifiedDiff ports.DiffPort,
	dryRun bool,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) (*Service, error) {
	manifests, err := meter.Int64Counter("chartpin.manifests",
		metric.WithDescription("Manifests reconciled, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating manifests counter: %w", err)
	}
	resolveDuration, err := meter.Float64Histogram("chartpin.resolve.duration",
		metric.WithDescription("Time spent resolving the latest chart version"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolve duration histogram: %w", err)
	}

	return &Service{
		source:          source,
		parser:          parser,
		classifier:      classifier,
		resolver:        resolver,
		patcher:         patcher,
		semanticDiff:    semanticDiff,
		unifiedDiff:     unifiedDiff,
		dryRun:          dryRun,
		logger:          logger,
		tracer:          tracer,
		manifests:       manifests,
		resolveDuration: resolveDuration,
	}, nil
}

// Run reconciles every manifest under dirs, in listing order. A directory
// named more than once is scanned once. It only returns an error when a
// directory cannot be listed or ctx is cancelled; the report gathered so
// far is returned either way.
func (s *Service) Run(ctx context.Context, dirs []string) (domain.Report, error) {
	report := domain.Report{DryRun: s.dryRun}

	for _, dir := range uniqueDirs(dirs) {
		paths, err := s.source.List(dir)
		if err != nil {
			return report, fmt.Errorf("listing %s: %w", dir, err)
		}
		s.logger.Debug("scanning directory", "dir", dir, "files", len(paths))

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			res, ok := s.reconcile(ctx, path)
			if !ok {
				continue
			}
			report.Results = append(report.Results, res)
			s.manifests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", res.Status.String())))
		}
	}

	counts := report.Counts()
	s.logger.Info("reconciliation finished",
		"dryRun", s.dryRun,
		"updated", counts[domain.StatusUpdated],
		"planned", counts[domain.StatusPlanned],
		"current", counts[domain.StatusCurrent],
		"skipped", counts[domain.StatusSkipped],
		"failed", counts[domain.StatusFailed],
	)
	return report, nil
}

// uniqueDirs cleans dirs and drops repeats, keeping first occurrences.
func uniqueDirs(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}
	return out
}

// reconcile handles one file. It reports false for files that are not
// eligible Applications; those do not appear in the report.
func (s *Service) reconcile(ctx context.Context, path string) (domain.Result, bool) {
	ctx, span := s.tracer.Start(ctx, "reconcile manifest",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	rec, err := s.parser.Parse(path)
	if err != nil {
		if errors.Is(err, domain.ErrNotApplication) {
			s.logger.Debug("not an application, ignoring", "path", path)
			return domain.Result{}, false
		}
		s.logger.Error("malformed application", "path", path, "error", err)
		return s.outcome(span, domain.Result{Path: path}, domain.Fail(err)), true
	}
	if !s.parser.Eligible(rec) {
		s.logger.Debug("application does not track a published chart", "path", path)
		return domain.Result{}, false
	}

	src := rec.Source
	span.SetAttributes(attribute.String("chart", src.Chart), attribute.String("repoURL", src.RepoURL))
	res := domain.Result{Path: path, Chart: src.Chart, OldVersion: src.TargetRevision}

	c := s.classifier.Classify(src)
	if c.Kind == domain.SourceUnsupported {
		return s.outcome(span, res, domain.Skip(fmt.Sprintf("%s %s", domain.ReasonUnsupported, src.RepoURL))), true
	}
	span.SetAttributes(attribute.String("source.kind", c.Kind.String()))

	decision := domain.Decide(src.TargetRevision, s.resolve(ctx, c, path))
	if decision.Action == domain.ActionApply {
		return s.apply(ctx, span, res, decision.Version), true
	}
	return s.outcome(span, res, decision), true
}

// outcome records a skip or failure decision on res.
func (s *Service) outcome(span trace.Span, res domain.Result, d domain.Decision) domain.Result {
	switch {
	case d.Action == domain.ActionFail:
		res.Status = domain.StatusFailed
		res.Reason = d.Err.Error()
		span.RecordError(d.Err)
		span.SetStatus(codes.Error, res.Reason)
	case d.Reason == domain.ReasonUpToDate:
		res.Status = domain.StatusCurrent
		res.Reason = d.Reason
		res.NewVersion = res.OldVersion
		s.logger.Info("already up to date", "chart", res.Chart, "path", res.Path, "version", res.OldVersion)
	default:
		res.Status = domain.StatusSkipped
		res.Reason = d.Reason
		s.logger.Info("skipping", "chart", res.Chart, "path", res.Path, "reason", res.Reason)
	}
	return res
}

// resolve returns nil when the latest version could not be determined.
func (s *Service) resolve(ctx context.Context, c domain.Classification, path string) *domain.ResolvedVersion {
	start := time.Now()
	resolved, err := s.resolver.Resolve(ctx, c)
	s.resolveDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("source.kind", c.Kind.String()),
			attribute.Bool("success", err == nil),
		),
	)
	if err != nil {
		s.logger.Warn("could not resolve latest version",
			"chart", c.Source.Chart, "path", path, "error", err)
		return nil
	}
	s.logger.Debug("resolved latest version", "chart", c.Source.Chart, "version", resolved.Version)
	return &resolved
}

func (s *Service) apply(ctx context.Context, span trace.Span, res domain.Result, version string) domain.Result {
	res.NewVersion = version

	change, err := s.patcher.Apply(ctx, res.Path, domain.TargetRevisionPatch(version), s.dryRun)
	if err != nil {
		s.logger.Error("failed to update manifest", "chart", res.Chart, "path", res.Path, "error", err)
		return s.outcome(span, res, domain.Fail(err))
	}

	res.Diff = s.diff(ctx, change, res.OldVersion, version)
	if s.dryRun {
		res.Status = domain.StatusPlanned
		s.logger.Info("would update targetRevision",
			"chart", res.Chart, "path", res.Path, "from", res.OldVersion, "to", version)
		return res
	}
	res.Status = domain.StatusUpdated
	s.logger.Info("updated targetRevision",
		"chart", res.Chart, "path", res.Path, "from", res.OldVersion, "to", version)
	return res
}

// diff renders the change, preferring the semantic diff when one is
// available.
func (s *Service) diff(ctx context.Context, change domain.Change, from, to string) string {
	if !change.Changed() {
		return ""
	}
	name := filepath.Base(change.Path)
	baseName := fmt.Sprintf("%s (%s)", name, from)
	headName := fmt.Sprintf("%s (%s)", name, to)

	if s.semanticDiff != nil {
		if d := s.semanticDiff.ComputeDiff(ctx, baseName, headName, change.Before, change.After); d != "" {
			return d
		}
	}
	return s.unifiedDiff.ComputeDiff(ctx, baseName, headName, change.Before, change.After)
}
