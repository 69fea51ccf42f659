package renderer

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. Falls back to VSync on
	// surfaces that cannot present immediately.
	PresentModeUncapped
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return fmt.Sprintf("PresentMode(%d)", int(m))
	}
}

// ParsePresentMode converts a configuration name ("vsync" or "uncapped") into a PresentMode.
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vsync":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	default:
		return PresentModeVSync, fmt.Errorf("unknown present mode %q", name)
	}
}

// wgpuPresentMode maps a PresentMode onto the surface present mode, falling back to FIFO (which
// every surface supports) when the requested mode is not in supported.
func wgpuPresentMode(mode PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	want := wgpu.PresentModeFifo
	if mode == PresentModeUncapped {
		want = wgpu.PresentModeImmediate
	}
	if len(supported) == 0 {
		return want
	}
	for _, m := range supported {
		if m == want {
			return want
		}
	}
	return wgpu.PresentModeFifo
}

// chooseSurfaceFormat prefers an sRGB swapchain format so sampled sRGB textures round-trip
// without a shift in brightness. Returns the first format when no sRGB format is offered.
func chooseSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return formats[0]
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
