package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ruckus.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Window, cfg.Window)

	_, err = execute(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigInitExplicitPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "other.yaml")

	_, err := execute(t, "--config", filepath.Join(dir, "missing.yaml"), "config", "init", target)
	require.NoError(t, err)

	_, err = config.Load(target)
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruckus.yaml")

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "present_mode: vsync")
	assert.Contains(t, out, "tick_rate: 60")
}

func TestLogLevelFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruckus.yaml")

	out, err := execute(t, "--config", path, "--log-level", "debug", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")

	_, err = execute(t, "--config", path, "--log-level", "loud", "config", "show")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestLimitFrames(t *testing.T) {
	quits := 0
	quit := func() { quits++ }
	calls := 0
	render := func(float32) error {
		calls++
		return nil
	}

	unlimited := limitFrames(quit, 0, render)
	for range 5 {
		require.NoError(t, unlimited(0))
	}
	assert.Zero(t, quits)

	limited := limitFrames(quit, 3, func(dt float32) error {
		calls++
		return errors.New("draw failed")
	})
	for range 4 {
		assert.Error(t, limited(0))
	}
	assert.Equal(t, 1, quits)
	assert.Equal(t, 9, calls)
}

func TestHueColor(t *testing.T) {
	tests := []struct {
		hue  float64
		want [4]float64
	}{
		{0, [4]float64{1, 0, 0, 1}},
		{60, [4]float64{1, 1, 0, 1}},
		{120, [4]float64{0, 1, 0, 1}},
		{240, [4]float64{0, 0, 1, 1}},
		{360, [4]float64{1, 0, 0, 1}},
		{-120, [4]float64{0, 0, 1, 1}},
		{30, [4]float64{1, 0.5, 0, 1}},
	}
	for _, tt := range tests {
		got := hueColor(tt.hue)
		for i := range got {
			assert.InDelta(t, tt.want[i], got[i], 1e-9, "hue %v channel %d", tt.hue, i)
		}
	}
}

func TestCubeMesh(t *testing.T) {
	verts, indices := cubeMesh()
	require.Len(t, verts, 24)
	require.Len(t, indices, 36)

	for _, v := range verts {
		p := mgl32.Vec3(v.Position)
		n := mgl32.Vec3(v.Normal)
		assert.InDelta(t, 0.5, p.Dot(n), 1e-6)
		for _, c := range p {
			assert.InDelta(t, 0.5, abs32(c), 1e-6)
		}
		assert.True(t, v.TexCoord[0] >= 0 && v.TexCoord[0] <= 1)
		assert.True(t, v.TexCoord[1] >= 0 && v.TexCoord[1] <= 1)
	}

	for i := 0; i < len(indices); i += 3 {
		a := mgl32.Vec3(verts[indices[i]].Position)
		b := mgl32.Vec3(verts[indices[i+1]].Position)
		c := mgl32.Vec3(verts[indices[i+2]].Position)
		n := mgl32.Vec3(verts[indices[i]].Normal)
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Dot(n), float32(0), "triangle %d winds clockwise", i/3)
	}
}

func TestCubeShaderSource(t *testing.T) {
	assert.Contains(t, cubeSource, "//#include <vertex_3d>")
	assert.Contains(t, cubeSource, "cube_texture_sampler")
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
