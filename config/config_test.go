package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 128, cfg.Compile.ProgSize)
	assert.Equal(t, 32, cfg.Compile.RegCount)
	assert.Equal(t, 32768, cfg.Compile.DelaySize)
	assert.True(t, cfg.Compile.SpinAsmMemBug)
	assert.True(t, cfg.Compile.ClampReals)
	assert.Equal(t, 0, cfg.Compile.Verbose)
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	assert.NotEmpty(t, path)
	assert.Equal(t, "config.toml", filepath.Base(path))
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()
	assert.NotEmpty(t, path)
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Compile.ProgSize = 64
	cfg.Compile.DelaySize = 16384
	cfg.Compile.ClampReals = false

	require.NoError(t, cfg.SaveTo(configPath))
	_, err := os.Stat(configPath)
	require.NoError(t, err)

	loaded, err := LoadFrom(configPath)
	require.NoError(t, err)

	assert.Equal(t, 64, loaded.Compile.ProgSize)
	assert.Equal(t, 16384, loaded.Compile.DelaySize)
	assert.False(t, loaded.Compile.ClampReals)
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Compile.ProgSize)
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := "[compile]\nprog_size = \"not a number\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(invalidTOML), 0o644))

	_, err := LoadFrom(configPath)
	require.Error(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.SaveTo(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err)
}

func TestWithOverrideAppliesOnlyNonNilFields(t *testing.T) {
	cfg := *DefaultConfig()
	progSize := 64
	clamp := false

	out := cfg.WithOverride(Override{ProgSize: &progSize, ClampReals: &clamp})

	assert.Equal(t, 64, out.Compile.ProgSize)
	assert.False(t, out.Compile.ClampReals)
	assert.Equal(t, 32, out.Compile.RegCount) // untouched
}
