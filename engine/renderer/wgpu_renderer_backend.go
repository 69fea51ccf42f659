package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// DepthFormat is the format of the surface depth buffer, matching framebuffer render buffers.
const DepthFormat = wgpu.TextureFormatDepth24PlusStencil8

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView
	width         uint32
	height        uint32

	presentMode PresentMode

	// Frame state between BeginFrame and Present
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling Configure on a surface.
	// This is required when the surface size changes, such as when the window is resized. The depth
	// buffer is recreated at the new size. A zero size (a minimized window) is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the depth buffer cannot be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode and reconfigures the surface if it is configured.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode) error

	// PresentMode returns the requested present mode.
	PresentMode() PresentMode

	// SurfaceFormat returns the swapchain color format.
	SurfaceFormat() wgpu.TextureFormat

	// SurfaceSize returns the configured surface size in pixels.
	SurfaceSize() (width, height uint32)

	// DepthView returns the surface depth buffer view.
	DepthView() *wgpu.TextureView

	// BeginFrame acquires the next swapchain texture. Must be paired with Present.
	//
	// Returns:
	//   - error: an error if a frame is already held or the swapchain texture could not be acquired
	BeginFrame() error

	// FrameView returns the view of the acquired swapchain texture, or nil outside a frame.
	FrameView() *wgpu.TextureView

	// Submit records commands through record on a fresh encoder and submits them to the queue.
	//
	// Parameters:
	//   - label: the command encoder label
	//   - record: encodes the commands; a returned error aborts the submission
	//
	// Returns:
	//   - error: the error from record or from finishing the encoder
	Submit(label string, record func(encoder *wgpu.CommandEncoder) error) error

	// Present presents the acquired swapchain texture and releases it. It is a no-op outside a frame.
	Present()

	// Release releases the depth buffer, surface, device, adapter and instance.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, logger *zap.Logger) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface descriptor")
	}

	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: PresentModeVSync,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	logger.Info("gpu device created", zap.Bool("fallback_adapter", forceFallbackAdapter))
	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 {
		return nil
	}
	b.width = uint32(width)
	b.height = uint32(height)
	return b.configure()
}

// configure applies the stored size and present mode. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) configure() error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = chooseSurfaceFormat(capabilities.Formats)
	presentMode := wgpuPresentMode(b.presentMode, capabilities.PresentModes)

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       b.width,
		Height:      b.height,
		PresentMode: presentMode,
		AlphaMode:   alphaMode,
	})

	b.releaseDepth()
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              b.width,
			Height:             b.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}
	b.depthTexture = depthTexture
	b.depthView = depthView

	b.logger.Debug("surface configured",
		zap.Uint32("width", b.width),
		zap.Uint32("height", b.height),
		zap.Stringer("format", b.surfaceFormat),
		zap.Stringer("present_mode", presentMode),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) releaseDepth() {
	if b.depthView != nil {
		b.depthView.Release()
		b.depthView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
	if b.width == 0 || b.height == 0 {
		return nil
	}
	return b.configure()
}

func (b *wgpuRendererBackendImpl) PresentMode() PresentMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presentMode
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SurfaceSize() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackendImpl) DepthView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.depthView
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.width == 0 || b.height == 0 {
		return fmt.Errorf("surface is not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("failed to create surface view: %w", err)
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) FrameView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameView
}

func (b *wgpuRendererBackendImpl) Submit(label string, record func(encoder *wgpu.CommandEncoder) error) error {
	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	if err := record(encoder); err != nil {
		return err
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	b.releaseDepth()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}
