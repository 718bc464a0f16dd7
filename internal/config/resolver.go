package config

import (
	"fmt"
	"os"
	"strconv"

	oerrors "github.com/bluesnow/cli/internal/errors"
	"github.com/bluesnow/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Environment variables, all under the BLUESNOW prefix.
const (
	EnvConfig     = "BLUESNOW_CONFIG"
	EnvOutput     = "BLUESNOW_OUTPUT"
	EnvCompress   = "BLUESNOW_COMPRESS"
	EnvCodec      = "BLUESNOW_CODEC"
	EnvPython     = "BLUESNOW_PYTHON"
	EnvPipArgs    = "BLUESNOW_PIP_ARGS"
	EnvTimestamps = "BLUESNOW_LOG_TIMESTAMPS"
)

// Candidate is a value that may or may not have been supplied.
type Candidate[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Candidate.
func Some[T any](v T) Candidate[T] {
	return Candidate[T]{Value: v, Set: true}
}

// ResolvedValue records how one configuration value was chosen.
type ResolvedValue struct {
	Key    string
	Value  any
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]any
}

// ResolveOptions describes the candidates for a single key.
type ResolveOptions[T any] struct {
	Key     string
	EnvVar  string
	Flag    Candidate[T]
	Config  Candidate[T]
	Default T
	// Parse converts the environment string.
	Parse func(string) (T, error)
}

// Resolve picks a value using precedence flag > env > config > default.
// An environment value that does not parse is a configuration error.
func Resolve[T any](opts ResolveOptions[T]) (T, ResolvedValue, error) {
	var env Candidate[T]
	if raw, ok := os.LookupEnv(opts.EnvVar); ok && raw != "" {
		v, err := opts.Parse(raw)
		if err != nil {
			var zero T
			return zero, ResolvedValue{}, oerrors.NewConfigurationError(
				fmt.Sprintf("invalid %s=%q: %v", opts.EnvVar, raw, err),
				"",
			)
		}
		env = Some(v)
	}

	ordered := []struct {
		source ConfigSource
		c      Candidate[T]
	}{
		{SourceFlag, opts.Flag},
		{SourceEnv, env},
		{SourceConfig, opts.Config},
		{SourceDefault, Some(opts.Default)},
	}

	result := ResolvedValue{
		Key:      opts.Key,
		Shadowed: make(map[ConfigSource]any),
	}
	var value T
	for _, o := range ordered {
		if !o.c.Set {
			continue
		}
		if result.Source == "" {
			value = o.c.Value
			result.Value = o.c.Value
			result.Source = o.source
			continue
		}
		if o.source != SourceDefault {
			result.Shadowed[o.source] = o.c.Value
		}
	}

	return value, result, nil
}

// ParseString is the identity Parse func.
func ParseString(s string) (string, error) {
	return s, nil
}

// ParseBool parses boolean environment values.
func ParseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// FlagValues carries the global and build flags that can override config.
type FlagValues struct {
	Output     Candidate[string]
	Compress   Candidate[bool]
	Codec      Candidate[string]
	Python     Candidate[string]
	PipArgs    Candidate[string]
	Timestamps Candidate[bool]
}

// Settings is the effective configuration after resolution.
type Settings struct {
	Output      string
	Compress    bool
	Codec       string
	Python      string
	PipArgs     string
	Timestamps  bool
	EntryPoints []string
}

// ResolveSettings applies flag > env > config > default to every key.
func ResolveSettings(cfg *Config, flags FlagValues) (*Settings, []ResolvedValue, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Settings{EntryPoints: cfg.EntryPoints}
	var values []ResolvedValue

	stringKeys := []struct {
		key    string
		env    string
		flag   Candidate[string]
		config string
		def    string
		dst    *string
	}{
		{"output", EnvOutput, flags.Output, cfg.Output, DefaultOutput, &s.Output},
		{"codec", EnvCodec, flags.Codec, cfg.Codec, DefaultCodec, &s.Codec},
		{"python", EnvPython, flags.Python, cfg.Python, DefaultPython, &s.Python},
		{"pipArgs", EnvPipArgs, flags.PipArgs, cfg.PipArgs, "", &s.PipArgs},
	}
	for _, k := range stringKeys {
		v, rv, err := Resolve(ResolveOptions[string]{
			Key:     k.key,
			EnvVar:  k.env,
			Flag:    k.flag,
			Config:  Candidate[string]{Value: k.config, Set: k.config != ""},
			Default: k.def,
			Parse:   ParseString,
		})
		if err != nil {
			return nil, nil, err
		}
		*k.dst = v
		values = append(values, rv)
	}

	boolKeys := []struct {
		key    string
		env    string
		flag   Candidate[bool]
		config *bool
		def    bool
		dst    *bool
	}{
		{"compress", EnvCompress, flags.Compress, cfg.Compress, false, &s.Compress},
		{"log.timestamps", EnvTimestamps, flags.Timestamps, cfg.Log.Timestamps, true, &s.Timestamps},
	}
	for _, k := range boolKeys {
		config := Candidate[bool]{}
		if k.config != nil {
			config = Some(*k.config)
		}
		v, rv, err := Resolve(ResolveOptions[bool]{
			Key:     k.key,
			EnvVar:  k.env,
			Flag:    k.flag,
			Config:  config,
			Default: k.def,
			Parse:   ParseBool,
		})
		if err != nil {
			return nil, nil, err
		}
		*k.dst = v
		values = append(values, rv)
	}

	return s, values, nil
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) BLUESNOW_CONFIG env, (3) ~/.bluesnow/config.yaml default.
func ResolveConfigPath(flagValue string) (string, ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return "", ResolvedValue{}, err
	}

	flag := Candidate[string]{Value: flagValue, Set: flagValue != ""}
	return Resolve(ResolveOptions[string]{
		Key:     "config",
		EnvVar:  EnvConfig,
		Flag:    flag,
		Default: paths.ConfigFile,
		Parse:   ParseString,
	})
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
