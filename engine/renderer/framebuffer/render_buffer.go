package framebuffer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthStencilFormat is the format of every RenderBuffer.
const DepthStencilFormat = wgpu.TextureFormatDepth24PlusStencil8

// renderBuffer is the implementation of the RenderBuffer interface.
type renderBuffer struct {
	mu     *sync.Mutex
	width  uint32
	height uint32

	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// RenderBuffer is a depth-stencil attachment that is never sampled.
type RenderBuffer interface {
	// Width returns the width in texels.
	Width() uint32

	// Height returns the height in texels.
	Height() uint32

	// Format returns DepthStencilFormat.
	Format() wgpu.TextureFormat

	// View returns the attachment view, or nil after Release.
	View() *wgpu.TextureView

	// Release frees the view and texture.
	Release()
}

var _ RenderBuffer = &renderBuffer{}

// NewRenderBuffer allocates a depth24-stencil8 attachment.
//
// Parameters:
//   - g: the device to allocate on
//   - width: the width in texels
//   - height: the height in texels
//
// Returns:
//   - RenderBuffer: the new render buffer
//   - error: an allocation error
func NewRenderBuffer(g gpu.Context, width, height uint32) (RenderBuffer, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("render buffer size must be positive, got %dx%d", width, height)
	}

	tex, err := g.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: "Render Buffer",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthStencilFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render buffer: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create render buffer view: %w", err)
	}

	return &renderBuffer{
		mu:      &sync.Mutex{},
		width:   width,
		height:  height,
		texture: tex,
		view:    view,
	}, nil
}

func (rb *renderBuffer) Width() uint32 {
	return rb.width
}

func (rb *renderBuffer) Height() uint32 {
	return rb.height
}

func (rb *renderBuffer) Format() wgpu.TextureFormat {
	return DepthStencilFormat
}

func (rb *renderBuffer) View() *wgpu.TextureView {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.view
}

func (rb *renderBuffer) Release() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.view != nil {
		rb.view.Release()
		rb.view = nil
	}
	if rb.texture != nil {
		rb.texture.Release()
		rb.texture = nil
	}
}
