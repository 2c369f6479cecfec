package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasSaneFallbacks(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.Library.Root)
	assert.True(t, cfg.Library.Recursive)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, ":8080", cfg.Preview.Addr)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fae.yaml")
	yamlDoc := `
library:
  root: ./templates
  recursive: false
cache:
  enabled: true
  addr: "localhost:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./templates", cfg.Library.Root)
	assert.False(t, cfg.Library.Recursive)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	// untouched sections keep their defaults
	assert.Equal(t, ":8080", cfg.Preview.Addr)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library: [this is not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
