package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/platform/config"
)

func newUpdateCmd(v *viper.Viper, fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [directories...]",
		Short: "Bump targetRevision of Application manifests to the latest chart version",
		Long: `Scans *.yaml and *.yml files directly under each directory, resolves the
latest release of every Helm chart an Argo CD Application pins, and rewrites
spec.source.targetRevision in place when it is behind.

Directories default to the project file's list, then argocd/applications and
argocd/templates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, v, fs)
			if err != nil {
				return err
			}
			defer func() {
				if shutdownErr := c.Shutdown(cmd.Context()); shutdownErr != nil {
					c.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
				}
			}()

			dirs := args
			if len(dirs) == 0 {
				dirs = c.Directories
			}

			report, err := c.Reconciler.Run(cmd.Context(), dirs)
			printReport(cmd.OutOrStdout(), report, dirs)
			if err != nil {
				return err
			}
			if n := report.Counts()[domain.StatusFailed]; n > 0 {
				return errSilentExit{reason: fmt.Sprintf("%d manifest(s) failed", n)}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Bool(config.KeyDryRun, false, "show the changes without writing them")
	f.StringSlice(config.KeyDirectories, nil, "directories to scan (ignored when given as arguments)")
	f.String(config.KeyStrategy, config.StrategyHelm, "resolution strategy for HTTP chart repositories (helm, index)")
	f.String(config.KeyHelmBin, "helm", "helm binary used by the helm strategy")
	f.String(config.KeyDyffBin, "dyff", "dyff binary used for semantic diffs, when installed")
	f.Duration(config.KeyHTTPTimeout, 0, "timeout for chart index and GitHub requests (default 30s)")
	return cmd
}
