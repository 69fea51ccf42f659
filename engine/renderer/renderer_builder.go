package renderer

import (
	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/Carmen-Shannon/ruckus/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClipPlanes sets the near and far clip planes of the perspective projection.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - RendererBuilderOption: a function that applies the clip planes to a renderer
func WithClipPlanes(near, far float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clipNear = near
		r.clipFar = far
	}
}

// WithClearColor sets the color each frame is cleared to by BeginFrame.
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithCamera sets the camera used by Projection and View. A default fly camera is created otherwise.
func WithCamera(cam camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.camera = cam
	}
}

// WithDepthTest sets the initial depth test state.
func WithDepthTest(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.state.DepthTestEnabled = enabled
		r.state.DepthWriteEnabled = enabled
	}
}

// WithBlend sets the initial alpha blending state.
func WithBlend(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.state.BlendEnabled = enabled
	}
}

// WithLogger sets the logger used by the renderer and its GPU backend.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger.Named("renderer")
		}
	}
}

// WithConfig applies the renderer section of the configuration. An unknown present mode keeps
// the current one; config.Validate reports it.
//
// Parameters:
//   - cfg: the renderer configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies every configured renderer setting
func WithConfig(cfg config.RendererConfig) RendererBuilderOption {
	return func(r *renderer) {
		if mode, err := ParsePresentMode(cfg.PresentMode); err == nil {
			r.presentMode = mode
		}
		r.forceFallbackAdapter = cfg.ForceSoftware
		r.clearColor = wgpu.Color{R: cfg.ClearColor[0], G: cfg.ClearColor[1], B: cfg.ClearColor[2], A: cfg.ClearColor[3]}
		if cfg.ClipNear > 0 && cfg.ClipFar > cfg.ClipNear {
			r.clipNear = cfg.ClipNear
			r.clipFar = cfg.ClipFar
		}
		r.state.DepthTestEnabled = cfg.DepthTest
		r.state.DepthWriteEnabled = cfg.DepthTest
		r.state.BlendEnabled = cfg.AlphaBlend
	}
}
