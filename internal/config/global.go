package config

// GlobalConfig is shared by all commands. The root command populates it
// before any subcommand runs.
type GlobalConfig struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string

	// Config is the loaded config file; empty when the file is missing.
	Config *Config

	// LoadErr is the error from loading the config file, if any. Commands
	// that depend on the file's content report it.
	LoadErr error

	// Verbose is the --verbose flag.
	Verbose bool
}
