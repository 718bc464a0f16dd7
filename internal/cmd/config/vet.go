package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluesnow/cli/internal/config"
	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *config.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the bluesnow configuration file",
		Long: `Validate the bluesnow configuration file against the internal schema.

The command validates the configuration file at ~/.bluesnow/config.yaml by default.
Use --config flag to specify a different location.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, cfg)
		},
	}
}

func runVet(c *cobra.Command, cfg *config.GlobalConfig) error {
	expandedPath, err := config.ExpandPath(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}

	exists, err := config.ConfigFileExists(expandedPath)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}

	if !exists {
		return oerrors.NewExitError(
			fmt.Errorf("%w: config file %s", oerrors.ErrNotFound, expandedPath),
			oerrors.ExitNotFound,
		)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(expandedPath); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			fmt.Fprintln(c.ErrOrStderr(), "Error: config validation failed")
			fmt.Fprintf(c.ErrOrStderr(), "  File: %s\n\n", expandedPath)
			for _, e := range validationErrs {
				fmt.Fprintf(c.ErrOrStderr(), "  %s: %s\n", output.StyleNoun.Render(e.Field), e.Message)
			}
			exitErr := oerrors.NewExitError(err, oerrors.ExitConfigurationError)
			exitErr.Printed = true
			return exitErr
		}
		return err
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Config file is valid: "+expandedPath))
	return nil
}
