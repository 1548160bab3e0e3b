// Package helmcli resolves chart versions by driving the helm CLI inside a
// throwaway configuration home.
package helmcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
)

// Adapter implements ports.ResolverPort for HTTP(S) Helm repositories by
// shelling out to the helm CLI.
type Adapter struct {
	helmBin     string
	scratchRoot string // parent for per-call scratch dirs; "" means os.TempDir()
	logger      *slog.Logger
}

// New creates a helm CLI resolver. helmBin may be a bare name looked up on
// PATH at resolution time, so a missing binary only fails HTTP sources.
func New(helmBin, scratchRoot string, logger *slog.Logger) *Adapter {
	if helmBin == "" {
		helmBin = "helm"
	}
	return &Adapter{helmBin: helmBin, scratchRoot: scratchRoot, logger: logger}
}

// searchResult is one element of `helm search repo --output json`.
type searchResult struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	AppVersion  string `json:"app_version"`
	Description string `json:"description"`
}

// Resolve registers the repository under the chart's name in a fresh helm
// home, refreshes it and searches it for the chart. The scratch home is
// removed on every return path.
func (a *Adapter) Resolve(ctx context.Context, c domain.Classification) (domain.ResolvedVersion, error) {
	chart := c.Source.Chart

	bin, err := exec.LookPath(a.helmBin)
	if err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: helm binary not found: %w", chart, err)
	}

	scratch, err := os.MkdirTemp(a.scratchRoot, "chart-pin-helm-*")
	if err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: creating helm scratch dir: %w", chart, err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			a.logger.Warn("failed to remove helm scratch dir", "dir", scratch, "error", err)
		}
	}()

	env := isolatedEnv(scratch)

	if _, err := a.run(ctx, bin, env, "repo", "add", chart, c.Source.RepoURL); err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: %w", chart, err)
	}
	if _, err := a.run(ctx, bin, env, "repo", "update", chart); err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: %w", chart, err)
	}
	out, err := a.run(ctx, bin, env, "search", "repo", chart+"/"+chart, "--output", "json")
	if err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: %w", chart, err)
	}

	var results []searchResult
	if err := json.Unmarshal(out, &results); err != nil {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s: parsing helm search output: %w", chart, err)
	}

	version, ok := firstMatch(results, chart+"/"+chart)
	if !ok {
		return domain.ResolvedVersion{}, fmt.Errorf("chart %s in %s: %w", chart, c.Source.RepoURL, domain.ErrNoEligibleVersion)
	}
	return domain.ResolvedVersion{Chart: chart, Version: version}, nil
}

// firstMatch returns the first release version listed for name, in helm's order.
func firstMatch(results []searchResult, name string) (string, bool) {
	for _, r := range results {
		if r.Name == name && domain.IsRelease(r.Version) {
			return r.Version, true
		}
	}
	return "", false
}

func (a *Adapter) run(ctx context.Context, bin string, env []string, args ...string) ([]byte, error) {
	a.logger.Debug("running helm", "args", args)

	//nolint:gosec // G204: arguments come from parsed manifests, not a shell
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		a.logger.Debug("helm failed", "args", args, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("helm %s failed: %w\nstderr: %s", args[0]+" "+args[1], err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// isolatedEnv points every helm state location into dir.
func isolatedEnv(dir string) []string {
	return append(os.Environ(),
		"HELM_CONFIG_HOME="+filepath.Join(dir, "config"),
		"HELM_CACHE_HOME="+filepath.Join(dir, "cache"),
		"HELM_DATA_HOME="+filepath.Join(dir, "data"),
		"HELM_REPOSITORY_CONFIG="+filepath.Join(dir, "config", "repositories.yaml"),
		"HELM_REPOSITORY_CACHE="+filepath.Join(dir, "cache", "repository"),
		"HELM_REGISTRY_CONFIG="+filepath.Join(dir, "config", "registry", "config.json"),
	)
}
