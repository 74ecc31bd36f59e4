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

	assert.True(t, cfg.Engine.CorrectPhaseOnly)
	assert.Equal(t, 10, cfg.Engine.CacheCapacity)
	assert.Equal(t, 50, cfg.Engine.MaxMixingOrder)
	assert.InDelta(t, 0.1, cfg.Engine.LegacyTolerance, 1e-12)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sfview.yaml")

	cfg := DefaultConfig()
	cfg.Engine.CorrectPhaseOnly = false
	cfg.Engine.CacheCapacity = 4
	cfg.Edit.Threshold = 0.05
	cfg.Logging.JSON = true
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  maxMixingOrder: 7\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.MaxMixingOrder)
	assert.Equal(t, 10, cfg.Engine.CacheCapacity)
	assert.True(t, cfg.Engine.CorrectPhaseOnly)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  cacheCapacity: 0\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfview.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
