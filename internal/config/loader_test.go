package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/bluesnow/cli/internal/errors"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
output: dist
compress: true
codec: zlib
python: /usr/bin/python3.12
pipArgs: --no-deps --index-url "https://pypi.example.com/simple"
entryPoints:
  - run=pkg.cli:main
  - check=pkg.check:run
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "dist", cfg.Output)
		require.NotNil(t, cfg.Compress)
		assert.True(t, *cfg.Compress)
		assert.Equal(t, "zlib", cfg.Codec)
		assert.Equal(t, "/usr/bin/python3.12", cfg.Python)
		assert.Equal(t, `--no-deps --index-url "https://pypi.example.com/simple"`, cfg.PipArgs)
		assert.Equal(t, []string{"run=pkg.cli:main", "check=pkg.check:run"}, cfg.EntryPoints)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)

		assert.True(t, loader.InConfig("output"))
		assert.True(t, loader.InConfig("pipArgs"))
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "nonexistent.yaml")

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.Output)
		assert.Nil(t, cfg.Compress)
		assert.Empty(t, cfg.EntryPoints)
	})

	t.Run("environment is not merged", func(t *testing.T) {
		t.Setenv("BLUESNOW_OUTPUT", "env-out")

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("output: file-out\n"), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "file-out", cfg.Output)
	})

	t.Run("malformed yaml is a configuration error", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("output: [unclosed\n"), 0o644))

		_, err := NewLoader().Load(configFile)

		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrConfiguration)
	})
}

func TestConfigFileExists(t *testing.T) {
	t.Run("returns true for existing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(""), 0o644))

		exists, err := ConfigFileExists(configFile)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("returns false for missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "nonexistent.yaml")

		exists, err := ConfigFileExists(configFile)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
