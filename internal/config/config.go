// Package config provides configuration loading and management.
package config

// Built-in defaults, used when neither flag, env nor config file sets a value.
const (
	DefaultOutput = "bluesnow-out"
	DefaultCodec  = "xz"
	DefaultPython = "python3"
)

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty" mapstructure:"timestamps"`
}

// Config represents the bluesnow configuration file.
// Loaded from ~/.bluesnow/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// Output is the directory artifacts are written to.
	// Env: BLUESNOW_OUTPUT, Default: bluesnow-out
	Output string `json:"output,omitempty" yaml:"output,omitempty" mapstructure:"output"`

	// Compress embeds compressed module payloads.
	// Env: BLUESNOW_COMPRESS, Default: false
	Compress *bool `json:"compress,omitempty" yaml:"compress,omitempty" mapstructure:"compress"`

	// Codec selects the compression codec: "xz" or "zlib".
	// Env: BLUESNOW_CODEC, Default: xz
	Codec string `json:"codec,omitempty" yaml:"codec,omitempty" mapstructure:"codec"`

	// Python is the interpreter that runs pip.
	// Env: BLUESNOW_PYTHON, Default: python3
	Python string `json:"python,omitempty" yaml:"python,omitempty" mapstructure:"python"`

	// PipArgs are extra pip arguments, split with shell quoting rules.
	// Env: BLUESNOW_PIP_ARGS
	PipArgs string `json:"pipArgs,omitempty" yaml:"pipArgs,omitempty" mapstructure:"pipArgs"`

	// EntryPoints are used when none are given on the command line.
	EntryPoints []string `json:"entryPoints,omitempty" yaml:"entryPoints,omitempty" mapstructure:"entryPoints"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty" mapstructure:"log"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `bluesnow config init` to generate the initial config file.
func DefaultConfig() *Config {
	compress := false
	timestamps := true
	return &Config{
		Output:   DefaultOutput,
		Compress: &compress,
		Codec:    DefaultCodec,
		Python:   DefaultPython,
		Log: LogConfig{
			Timestamps: &timestamps,
		},
	}
}
