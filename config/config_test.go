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

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, [4]float64{0.2, 0.3, 0.3, 1.0}, cfg.Renderer.ClearColor)
	assert.Equal(t, "vsync", cfg.Renderer.PresentMode)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("RUCKUS_LOG_LEVEL", "")
	t.Setenv("RUCKUS_PRESENT_MODE", "")
	t.Setenv("RUCKUS_SOFTWARE_RENDERER", "")

	path := filepath.Join(t.TempDir(), "nested", "ruckus.yaml")

	cfg := DefaultConfig()
	cfg.Window.Title = "sprite"
	cfg.Camera.Position = [3]float32{4, 3, 3}
	cfg.Renderer.PresentMode = "uncapped"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sprite", loaded.Window.Title)
	assert.Equal(t, [3]float32{4, 3, 3}, loaded.Camera.Position)
	assert.Equal(t, "uncapped", loaded.Renderer.PresentMode)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("RUCKUS_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Window, cfg.Window)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruckus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  title: partial\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "partial", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruckus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("renderer:\n  present_mode: sometimes\n  clip_near: 5\n  clip_far: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "present mode")
	assert.Contains(t, err.Error(), "clip planes")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruckus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [unterminated"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RUCKUS_LOG_LEVEL", "debug")
	t.Setenv("RUCKUS_PRESENT_MODE", "uncapped")
	t.Setenv("RUCKUS_SOFTWARE_RENDERER", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.True(t, cfg.Renderer.ForceSoftware)
}
