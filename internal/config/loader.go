package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

// Loader reads the config file. Environment variables are not merged here;
// the resolver applies them with their own precedence so each value's
// source can be reported.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load loads configuration from path. A missing file yields an empty Config.
func (l *Loader) Load(path string) (*Config, error) {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("reading config file %s: %v", expandedPath, err),
			"Run 'bluesnow config vet' to check the file, or 'bluesnow config init --force' to recreate it.",
		)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewConfigurationError(
			fmt.Sprintf("decoding config file %s: %v", expandedPath, err),
			"",
		)
	}

	return &cfg, nil
}

// InConfig reports whether key was set in the loaded file.
func (l *Loader) InConfig(key string) bool {
	return l.v.InConfig(key)
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(path string) (bool, error) {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
