// Package framebuffer groups render-target textures and a depth-stencil render buffer into an
// offscreen target the renderer can draw into and read back from.
package framebuffer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxColorAttachments is the number of color slots a framebuffer exposes.
const MaxColorAttachments = 8

// ErrIncompleteFramebuffer is returned when a framebuffer cannot be rendered into.
var ErrIncompleteFramebuffer = errors.New("framebuffer: incomplete")

// framebuffer is the implementation of the Framebuffer interface.
type framebuffer struct {
	mu  *sync.Mutex
	gpu gpu.Context

	colors       [MaxColorAttachments]texture.Texture
	renderBuffer RenderBuffer
}

// Framebuffer is an offscreen render target made of up to MaxColorAttachments color textures and an
// optional depth-stencil render buffer. It does not own its attachments.
type Framebuffer interface {
	// AttachTexture attaches tex to color slot 0.
	AttachTexture(tex texture.Texture) error

	// AttachTextureN attaches tex to color slot n. A nil texture clears the slot.
	//
	// Parameters:
	//   - tex: a texture created with texture.NewRenderTarget
	//   - n: the color slot, in [0, MaxColorAttachments)
	//
	// Returns:
	//   - error: an error if n is out of range or tex is not a render target
	AttachTextureN(tex texture.Texture, n int) error

	// AttachRenderBuffer attaches the depth-stencil buffer. A nil buffer detaches it.
	AttachRenderBuffer(rb RenderBuffer) error

	// Color returns the texture in slot n, or nil.
	Color(n int) texture.Texture

	// RenderBuffer returns the attached depth-stencil buffer, or nil.
	RenderBuffer() RenderBuffer

	// Size returns the dimensions of the attachments. It is zero when nothing is attached.
	Size() common.Vec2u

	// Validate reports whether the framebuffer can be drawn into: at least one color attachment,
	// no gaps between color slots, and every attachment the same size.
	//
	// Returns:
	//   - error: nil, or an error wrapping ErrIncompleteFramebuffer
	Validate() error

	// ColorFormats returns the formats of the attached color textures in slot order.
	ColorFormats() []wgpu.TextureFormat

	// ColorViews returns the views of the attached color textures in slot order.
	ColorViews() []*wgpu.TextureView

	// DepthFormat returns the render buffer format, or zero when none is attached.
	DepthFormat() wgpu.TextureFormat

	// ReadPixels copies color attachment n back to the CPU.
	//
	// Parameters:
	//   - ctx: cancels the wait for the GPU copy
	//   - n: the color slot
	//
	// Returns:
	//   - *image.RGBA: the pixels, top row first
	//   - error: an error if the slot is empty or the readback fails
	ReadPixels(ctx context.Context, n int) (*image.RGBA, error)

	// Release detaches every attachment. The attachments themselves are not released.
	Release()
}

var _ Framebuffer = &framebuffer{}

// NewFramebuffer creates an empty framebuffer.
func NewFramebuffer(g gpu.Context) Framebuffer {
	return &framebuffer{
		mu:  &sync.Mutex{},
		gpu: g,
	}
}

func (f *framebuffer) AttachTexture(tex texture.Texture) error {
	return f.AttachTextureN(tex, 0)
}

func (f *framebuffer) AttachTextureN(tex texture.Texture, n int) error {
	if n < 0 || n >= MaxColorAttachments {
		return fmt.Errorf("color slot %d out of range [0, %d)", n, MaxColorAttachments)
	}
	if tex != nil && !tex.IsRenderTarget() {
		return fmt.Errorf("texture %q is not a render target", tex.Label())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors[n] = tex
	return nil
}

func (f *framebuffer) AttachRenderBuffer(rb RenderBuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderBuffer = rb
	return nil
}

func (f *framebuffer) Color(n int) texture.Texture {
	if n < 0 || n >= MaxColorAttachments {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.colors[n]
}

func (f *framebuffer) RenderBuffer() RenderBuffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renderBuffer
}

func (f *framebuffer) Size() common.Vec2u {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.colors {
		if c != nil {
			return c.Size()
		}
	}
	if f.renderBuffer != nil {
		return common.NewVec2(f.renderBuffer.Width(), f.renderBuffer.Height())
	}
	return common.Vec2u{}
}

func (f *framebuffer) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := f.colorCount()
	if count == 0 {
		return fmt.Errorf("%w: no color attachment in slot 0", ErrIncompleteFramebuffer)
	}
	for n := count; n < MaxColorAttachments; n++ {
		if f.colors[n] != nil {
			return fmt.Errorf("%w: color slot %d attached after empty slot %d", ErrIncompleteFramebuffer, n, count)
		}
	}

	size := f.colors[0].Size()
	for n := 1; n < count; n++ {
		if s := f.colors[n].Size(); s != size {
			return fmt.Errorf("%w: color slot %d is %dx%d, slot 0 is %dx%d", ErrIncompleteFramebuffer, n, s.X, s.Y, size.X, size.Y)
		}
	}
	if rb := f.renderBuffer; rb != nil && (rb.Width() != size.X || rb.Height() != size.Y) {
		return fmt.Errorf("%w: render buffer is %dx%d, color is %dx%d", ErrIncompleteFramebuffer, rb.Width(), rb.Height(), size.X, size.Y)
	}
	return nil
}

func (f *framebuffer) ColorFormats() []wgpu.TextureFormat {
	f.mu.Lock()
	defer f.mu.Unlock()

	formats := make([]wgpu.TextureFormat, 0, MaxColorAttachments)
	for _, c := range f.colors[:f.colorCount()] {
		formats = append(formats, c.Format())
	}
	return formats
}

func (f *framebuffer) ColorViews() []*wgpu.TextureView {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := make([]*wgpu.TextureView, 0, MaxColorAttachments)
	for _, c := range f.colors[:f.colorCount()] {
		views = append(views, c.View())
	}
	return views
}

func (f *framebuffer) DepthFormat() wgpu.TextureFormat {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renderBuffer == nil {
		return 0
	}
	return f.renderBuffer.Format()
}

func (f *framebuffer) ReadPixels(ctx context.Context, n int) (*image.RGBA, error) {
	tex := f.Color(n)
	if tex == nil {
		return nil, fmt.Errorf("%w: color slot %d is empty", ErrIncompleteFramebuffer, n)
	}

	bpp := texture.BytesPerPixel(tex.Format())
	if bpp != 4 {
		return nil, fmt.Errorf("cannot read %d-byte texels of %v into RGBA", bpp, tex.Format())
	}

	pixels, err := gpu.ReadTexture(ctx, f.gpu, tex.Texture(), tex.Width(), tex.Height(), bpp)
	if err != nil {
		return nil, fmt.Errorf("failed to read color slot %d: %w", n, err)
	}
	return &image.RGBA{
		Pix:    pixels,
		Stride: int(tex.Width()) * 4,
		Rect:   image.Rect(0, 0, int(tex.Width()), int(tex.Height())),
	}, nil
}

func (f *framebuffer) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors = [MaxColorAttachments]texture.Texture{}
	f.renderBuffer = nil
}

// colorCount returns the number of contiguous color attachments starting at slot 0.
func (f *framebuffer) colorCount() int {
	for n, c := range f.colors {
		if c == nil {
			return n
		}
	}
	return MaxColorAttachments
}
