// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	cmdconfig "github.com/bluesnow/cli/internal/cmd/config"
	"github.com/bluesnow/cli/internal/config"
	"github.com/bluesnow/cli/internal/output"
)

// NewRootCmd creates the root command for the bluesnow CLI.
func NewRootCmd() *cobra.Command {
	var (
		cfg            config.GlobalConfig
		configFlag     string
		timestampsFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "bluesnow",
		Short: "Bundle Python applications into single-file executables",
		Long: `bluesnow installs a Python application and its dependencies, then writes
one self-executing .py file per entry point. Every module is embedded in the
file and served from memory by an import hook, so the result runs with a
plain python3 interpreter and no install step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, &cfg, configFlag, timestampsFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: BLUESNOW_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output (env: BLUESNOW_LOG_TIMESTAMPS)")

	rootCmd.AddCommand(NewBuildCmd(&cfg))
	rootCmd.AddCommand(NewVersionCmd(&cfg))
	rootCmd.AddCommand(cmdconfig.NewConfigCmd(&cfg))

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(c *cobra.Command, cfg *config.GlobalConfig, configFlag string, timestampsFlag bool) error {
	path, pathValue, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}
	cfg.ConfigPath = path

	// A broken config file must not block config init or version.
	cfg.Config, cfg.LoadErr = config.NewLoader().Load(path)
	if cfg.Config == nil {
		cfg.Config = &config.Config{}
	}

	flag := config.Candidate[bool]{}
	if c.Flags().Changed("timestamps") {
		flag = config.Some(timestampsFlag)
	}
	fromFile := config.Candidate[bool]{}
	if cfg.Config.Log.Timestamps != nil {
		fromFile = config.Some(*cfg.Config.Log.Timestamps)
	}
	timestamps, tsValue, err := config.Resolve(config.ResolveOptions[bool]{
		Key:     "log.timestamps",
		EnvVar:  config.EnvTimestamps,
		Flag:    flag,
		Config:  fromFile,
		Default: true,
		Parse:   config.ParseBool,
	})
	if err != nil {
		return err
	}

	output.SetupLogging(output.LogConfig{
		Verbose:    cfg.Verbose,
		Timestamps: output.BoolPtr(timestamps),
	})

	config.LogResolvedValues([]config.ResolvedValue{pathValue, tsValue})
	if cfg.LoadErr != nil {
		output.Debug("config load error", "error", cfg.LoadErr)
	}

	return nil
}
