package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathantilsley/chart-pin/internal/pin/domain"
	"github.com/nathantilsley/chart-pin/internal/platform/config"
)

func newBuildCmd(v *viper.Viper, fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Sync the apps revision pin with the collection version and build the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := setup(cmd, v, fs)
			if err != nil {
				return err
			}
			defer func() { _ = c.Shutdown(cmd.Context()) }()

			target := c.BuildTarget
			res, err := c.Builder.Build(cmd.Context(), target)
			out := cmd.OutOrStdout()
			if res.Version != "" && res.PreviousPin != "" {
				if res.PinUpdated {
					fmt.Fprintf(out, "Updated %s from %s to %s.\n", target.PinKey, res.PreviousPin, res.Version)
					if res.Diff != "" {
						fmt.Fprintln(out, res.Diff)
					}
				} else {
					fmt.Fprintf(out, "%s %s is already up to date.\n", target.PinKey, res.Version)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Collection built successfully!")
			if res.Output != "" {
				fmt.Fprintln(out, res.Output)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String(config.KeyGalaxyPath, "", fmt.Sprintf("collection manifest (default %s)", domain.DefaultGalaxyPath))
	f.String(config.KeyPinPath, "", fmt.Sprintf("variables file holding the pin (default %s)", domain.DefaultPinPath))
	f.String(config.KeyPinKey, "", fmt.Sprintf("pin variable name (default %s)", domain.DefaultPinKey))
	f.String(config.KeyGalaxyBin, "ansible-galaxy", "collection packaging tool")
	return cmd
}
