package engine

import (
	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/Carmen-Shannon/ruckus/engine/audio"
	"github.com/Carmen-Shannon/ruckus/engine/camera"
	"github.com/Carmen-Shannon/ruckus/engine/renderer"
	"github.com/Carmen-Shannon/ruckus/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for game logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. WithWindowOptions is ignored when a window is supplied.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions appends options for the window the engine creates.
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRendererOptions appends options for the renderer.
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithCameraOptions appends options for the renderer's camera.
func WithCameraOptions(options ...camera.CameraBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.cameraOptions = append(e.cameraOptions, options...)
	}
}

// WithFlyCamera attaches a fly controller to the window's input and advances it every tick.
// The controller takes over the window's key, mouse move and scroll callbacks.
func WithFlyCamera(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.flyCamera = enabled
	}
}

// WithAudio enables the audio manager and appends options for it.
//
// Parameters:
//   - enabled: whether NewEngine creates an audio manager
//   - options: options passed to audio.NewManager
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAudio(enabled bool, options ...audio.ManagerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.audioEnabled = enabled
		e.audioOptions = append(e.audioOptions, options...)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameInterval(fps)
	}
}

// WithLogger sets the logger shared by the engine and every component it creates.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig applies every section of cfg: window, renderer, camera, audio and engine loops.
// Options given after it override the configured values.
//
// Parameters:
//   - cfg: the loaded configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg *config.Config) EngineBuilderOption {
	return func(e *engine) {
		if cfg == nil {
			return
		}
		WithWindowOptions(window.WithConfig(cfg.Window))(e)
		WithRendererOptions(renderer.WithConfig(cfg.Renderer))(e)
		WithCameraOptions(camera.WithConfig(cfg.Camera))(e)
		WithAudio(cfg.Audio.Enabled, audio.WithConfig(cfg.Audio))(e)
		WithTickRate(cfg.Engine.TickRate)(e)
		WithRenderFrameLimit(cfg.Engine.FrameLimit)(e)
		WithProfiling(cfg.Engine.Profiler)(e)
	}
}
