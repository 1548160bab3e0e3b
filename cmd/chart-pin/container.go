package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/spf13/afero"

	argoapps "github.com/nathantilsley/chart-pin/internal/pin/adapters/argo_apps"
	dirscan "github.com/nathantilsley/chart-pin/internal/pin/adapters/dir_scan"
	dyffdiff "github.com/nathantilsley/chart-pin/internal/pin/adapters/dyff_diff"
	galaxybuild "github.com/nathantilsley/chart-pin/internal/pin/adapters/galaxy_build"
	githubrelease "github.com/nathantilsley/chart-pin/internal/pin/adapters/github_release"
	helmcli "github.com/nathantilsley/chart-pin/internal/pin/adapters/helm_cli"
	helmindex "github.com/nathantilsley/chart-pin/internal/pin/adapters/helm_index"
	linediff "github.com/nathantilsley/chart-pin/internal/pin/adapters/line_diff"
	projectfile "github.com/nathantilsley/chart-pin/internal/pin/adapters/project_file"
	"github.com/nathantilsley/chart-pin/internal/pin/adapters/resolver"
	yamlpatch "github.com/nathantilsley/chart-pin/internal/pin/adapters/yaml_patch"
	"github.com/nathantilsley/chart-pin/internal/pin/app"
	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/pin/ports"
	"github.com/nathantilsley/chart-pin/internal/platform/config"
	ghclient "github.com/nathantilsley/chart-pin/internal/platform/github"
	"github.com/nathantilsley/chart-pin/internal/platform/httpclient"
	"github.com/nathantilsley/chart-pin/internal/platform/logger"
	"github.com/nathantilsley/chart-pin/internal/platform/telemetry"
)

// Container holds all application dependencies.
type Container struct {
	Config      config.Config
	Logger      *slog.Logger
	Telemetry   *telemetry.Telemetry
	Directories []string
	BuildTarget domain.BuildTarget
	Reconciler  ports.ReconcileUseCase
	Builder     ports.BuildUseCase
}

// NewContainer builds and wires all dependencies. Invalid project file
// entries surface here as *domain.ConfigError, before any manifest is read.
func NewContainer(ctx context.Context, cfg config.Config, fs afero.Fs, logOut io.Writer) (*Container, error) {
	log := logger.New(logOut, cfg.LogLevel, cfg.LogFormat, logger.UseColor())

	project, err := projectfile.Load(fs, cfg.ProjectFile)
	if err != nil {
		return nil, fmt.Errorf("loading project file: %w", err)
	}
	classifier, err := domain.NewClassifier(project.OCISources)
	if err != nil {
		return nil, err
	}
	log.Debug("oci sources", "locators", classifier.Locators())

	tel, err := telemetry.New(ctx, cfg.OTelEnabled, Version)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	httpClient := httpclient.New(cfg.HTTPTimeout)
	githubClient, err := newGitHubClient(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	var httpResolver ports.ResolverPort
	switch cfg.Strategy {
	case config.StrategyIndex:
		httpResolver = helmindex.New(httpClient, httpclient.UserAgent(Version), log)
	default:
		httpResolver = helmcli.New(cfg.HelmBin, "", log)
	}
	log.Debug("resolution strategy", "strategy", cfg.Strategy)

	patcher := yamlpatch.New(fs)
	unifiedDiff := linediff.New()

	reconciler, err := app.NewService(
		dirscan.New(fs),
		argoapps.New(fs),
		classifier,
		resolver.NewDispatcher(httpResolver, githubrelease.New(githubClient, log)),
		patcher,
		dyffdiff.New(cfg.DyffBin),
		unifiedDiff,
		cfg.DryRun,
		log,
		tel.Meter,
		tel.Tracer,
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconcile service: %w", err)
	}

	collection := galaxybuild.New(fs, cfg.GalaxyBin, log)
	builder := app.NewBuildService(collection, patcher, collection, unifiedDiff, log)

	return &Container{
		Config:      cfg,
		Logger:      log,
		Telemetry:   tel,
		Directories: firstNonEmpty(cfg.Directories, project.Directories, domain.DefaultDirectories()),
		BuildTarget: buildTarget(cfg, project.Build),
		Reconciler:  reconciler,
		Builder:     builder,
	}, nil
}

// Shutdown flushes telemetry.
func (c *Container) Shutdown(ctx context.Context) error {
	return c.Telemetry.Shutdown(ctx)
}

func newGitHubClient(cfg config.Config, httpClient *http.Client) (*gogithub.Client, error) {
	if cfg.GitHubAppAuth() {
		client, err := ghclient.NewAppClient(httpClient, cfg.GitHubAppID, cfg.GitHubInstallationID, cfg.GitHubPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github client: %w", err)
		}
		return client, nil
	}
	return ghclient.NewClient(httpClient, cfg.GitHubToken), nil
}

func buildTarget(cfg config.Config, project domain.BuildTarget) domain.BuildTarget {
	t := project
	if cfg.GalaxyPath != "" {
		t.GalaxyPath = cfg.GalaxyPath
	}
	if cfg.PinPath != "" {
		t.PinPath = cfg.PinPath
	}
	if cfg.PinKey != "" {
		t.PinKey = cfg.PinKey
	}
	return t
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
