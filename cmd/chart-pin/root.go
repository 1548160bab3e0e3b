package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	projectfile "github.com/nathantilsley/chart-pin/internal/pin/adapters/project_file"
	"github.com/nathantilsley/chart-pin/internal/platform/config"
)

// newRootCmd builds the command tree. Each invocation gets its own viper
// instance so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	return newRootCmdWithFs(afero.NewOsFs())
}

func newRootCmdWithFs(fs afero.Fs) *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "chart-pin",
		Short:         "Keep Helm chart versions pinned in Argo CD Applications up to date",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Flags of the running subcommand include the inherited ones.
			return config.Bind(v, cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.String(config.KeyLogLevel, "info", "log level (debug, info, warn, error)")
	pf.String(config.KeyLogFormat, "text", "log format (text, json)")
	pf.String(config.KeyProjectFile, projectfile.DefaultPath, "project file with OCI sources and build paths")
	pf.Bool(config.KeyOTelEnabled, false, "export traces and metrics over OTLP")

	root.AddCommand(newUpdateCmd(v, fs))
	root.AddCommand(newBuildCmd(v, fs))
	return root
}

// setup loads configuration and wires the container for a subcommand.
func setup(cmd *cobra.Command, v *viper.Viper, fs afero.Fs) (*Container, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return NewContainer(cmd.Context(), cfg, fs, cmd.ErrOrStderr())
}
