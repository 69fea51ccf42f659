// Package config loads and saves the YAML settings used by the ruckus command and by applications
// that want a single file to describe their window, renderer, camera, audio and logging set-up.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all ruckus configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`
	Audio    AudioConfig    `yaml:"audio"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	Resizable bool   `yaml:"resizable"`
}

// RendererConfig configures the surface and the default draw state.
type RendererConfig struct {
	PresentMode   string     `yaml:"present_mode"` // vsync, uncapped
	ForceSoftware bool       `yaml:"force_software"`
	ClearColor    [4]float64 `yaml:"clear_color"`
	ClipNear      float32    `yaml:"clip_near"`
	ClipFar       float32    `yaml:"clip_far"`
	DepthTest     bool       `yaml:"depth_test"`
	AlphaBlend    bool       `yaml:"alpha_blend"`
}

// CameraConfig configures the fly camera.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Fov         float32    `yaml:"fov"`
	MoveSpeed   float32    `yaml:"move_speed"`
	Sensitivity float32    `yaml:"sensitivity"`
}

// AudioConfig configures the speaker.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	SampleRate   int     `yaml:"sample_rate"`
	BufferMillis int     `yaml:"buffer_millis"`
	Volume       float64 `yaml:"volume"`
}

// EngineConfig configures the engine loops.
type EngineConfig struct {
	TickRate   float64 `yaml:"tick_rate"`
	FrameLimit float64 `yaml:"frame_limit"` // 0 = uncapped
	Profiler   bool    `yaml:"profiler"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "ruckus",
			Width:     800,
			Height:    600,
			MinWidth:  320,
			MinHeight: 240,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			ClearColor:  [4]float64{0.2, 0.3, 0.3, 1.0},
			ClipNear:    0.1,
			ClipFar:     100,
			DepthTest:   true,
			AlphaBlend:  true,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			Yaw:         -90,
			Pitch:       0,
			Fov:         45,
			MoveSpeed:   2.5,
			Sensitivity: 0.1,
		},
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   44100,
			BufferMillis: 100,
			Volume:       1.0,
		},
		Engine: EngineConfig{
			TickRate:   60,
			FrameLimit: 0,
			Profiler:   false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "vsync", "uncapped":
	default:
		errs = append(errs, fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode))
	}
	if c.Renderer.ClipNear <= 0 || c.Renderer.ClipFar <= c.Renderer.ClipNear {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Renderer.ClipNear, c.Renderer.ClipFar))
	}
	if c.Camera.Fov < 1 || c.Camera.Fov > 45 {
		errs = append(errs, fmt.Errorf("camera fov must be within [1, 45] degrees, got %g", c.Camera.Fov))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio sample rate must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate must be positive, got %g", c.Engine.TickRate))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("RUCKUS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if mode := os.Getenv("RUCKUS_PRESENT_MODE"); mode != "" {
		c.Renderer.PresentMode = mode
	}
	if v := os.Getenv("RUCKUS_SOFTWARE_RENDERER"); v == "1" || strings.EqualFold(v, "true") {
		c.Renderer.ForceSoftware = true
	}
}
