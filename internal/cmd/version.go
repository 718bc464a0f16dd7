package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bluesnow/cli/internal/config"
	"github.com/bluesnow/cli/internal/output"
	"github.com/bluesnow/cli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(cfg *config.GlobalConfig) *cobra.Command {
	var pythonFlag string

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show bluesnow version information.

Displays:
  - bluesnow version, commit, and build date
  - the Python interpreter used to install dependencies`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			python := pythonFlag
			if python == "" {
				settings, _, err := config.ResolveSettings(cfg.Config, config.FlagValues{})
				if err != nil {
					return err
				}
				python = settings.Python
			}

			output.Println(version.Get().String())
			output.Println(version.DetectPython(c.Context(), python).String())
			return nil
		},
	}

	c.Flags().StringVar(&pythonFlag, "python", "", "Python interpreter to report on")

	return c
}
