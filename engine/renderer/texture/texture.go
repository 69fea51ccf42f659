// Package texture uploads decoded images and raw pixel data into sampled GPU textures, and
// allocates the color targets that framebuffers render into.
package texture

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/loader"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

var (
	// ErrInvalidData is returned when pixel data does not match the declared size and format.
	ErrInvalidData = errors.New("texture: invalid pixel data")

	// ErrOutOfBounds is returned when a write region falls outside the texture.
	ErrOutOfBounds = errors.New("texture: region out of bounds")
)

// ColorFormat is the storage format of sampled textures. Pixel data of every PixelFormat is
// expanded to it on upload.
const ColorFormat = wgpu.TextureFormatRGBA8UnormSrgb

// RenderTargetFormat is the storage format of textures created with NewRenderTarget.
const RenderTargetFormat = wgpu.TextureFormatRGBA8Unorm

const (
	sampledUsage      = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	renderTargetUsage = wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
)

// texture is the implementation of the Texture interface.
type texture struct {
	mu     *sync.Mutex
	gpu    gpu.Context
	label  string
	logger *zap.Logger

	width        uint32
	height       uint32
	format       wgpu.TextureFormat
	mipLevels    uint32
	unit         uint32
	renderTarget bool

	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler

	// base is the CPU copy of level 0, kept while a mip chain must be rebuilt after writes.
	base *image.RGBA
}

// Texture is a sampled 2D GPU texture with its default view and sampler.
type Texture interface {
	// Label returns the debug label.
	Label() string

	// Width returns the width in texels.
	Width() uint32

	// Height returns the height in texels.
	Height() uint32

	// Size returns the dimensions as a vector.
	Size() common.Vec2u

	// Format returns the GPU storage format.
	Format() wgpu.TextureFormat

	// MipLevels returns the number of mip levels, 1 when mipmapping is disabled.
	MipLevels() uint32

	// Unit returns the ordinal of the shader texture binding this texture feeds when bound with
	// Shader.SetTextureUnit.
	Unit() uint32

	// SetUnit sets the texture unit.
	SetUnit(unit uint32)

	// IsRenderTarget reports whether the texture can be attached to a framebuffer.
	IsRenderTarget() bool

	// Write uploads a sub-image. The pixels are converted to the storage format and the mip chain
	// is regenerated.
	//
	// Parameters:
	//   - offset: the top-left texel of the region
	//   - width: the region width
	//   - height: the region height
	//   - format: the channel layout of data
	//   - data: tightly packed pixels
	//
	// Returns:
	//   - error: ErrOutOfBounds, ErrInvalidData, or nil
	Write(offset common.Vec2u, width, height uint32, format common.PixelFormat, data []byte) error

	// Texture returns the GPU texture.
	Texture() *wgpu.Texture

	// View returns the default view covering every mip level.
	View() *wgpu.TextureView

	// Sampler returns the sampler configured at construction.
	Sampler() *wgpu.Sampler

	// Release frees the sampler, view and texture.
	Release()
}

var _ Texture = &texture{}

// FromFile decodes an image file and uploads it. Rows are flipped vertically so that the first
// uploaded row is the bottom of the image.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - path: the image file
//   - options: texture options such as WithMipmaps
//
// Returns:
//   - Texture: the new texture
//   - error: an error if decoding or upload fails
func FromFile(g gpu.Context, path string, options ...TextureBuilderOption) (Texture, error) {
	img, err := loader.DecodeFile(path, true)
	if err != nil {
		return nil, err
	}
	options = append([]TextureBuilderOption{WithLabel(filepath.Base(path))}, options...)
	return FromMemory(g, img.Pixels, img.Width, img.Height, common.PixelFormatRGBA, options...)
}

// FromImage uploads an already decoded image without flipping it.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - img: the source image
//   - options: texture options
//
// Returns:
//   - Texture: the new texture
//   - error: an error if upload fails
func FromImage(g gpu.Context, img image.Image, options ...TextureBuilderOption) (Texture, error) {
	decoded := loader.FromImage(img, false)
	return FromMemory(g, decoded.Pixels, decoded.Width, decoded.Height, common.PixelFormatRGBA, options...)
}

// FromMemory uploads tightly packed pixel data.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - data: width*height*format.Channels() bytes, first row first
//   - width: the width in pixels
//   - height: the height in pixels
//   - format: the channel layout of data
//   - options: texture options
//
// Returns:
//   - Texture: the new texture
//   - error: ErrInvalidData, or an allocation error
func FromMemory(g gpu.Context, data []byte, width, height uint32, format common.PixelFormat, options ...TextureBuilderOption) (Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: zero-sized texture %dx%d", ErrInvalidData, width, height)
	}
	rgba, err := ToRGBA(data, width, height, format)
	if err != nil {
		return nil, err
	}

	opts := newTextureOptions("Texture", options)
	levels := uint32(1)
	if opts.mipmaps {
		levels = MipLevelCount(width, height)
	}

	t, err := newTexture(g, width, height, ColorFormat, sampledUsage, levels, opts)
	if err != nil {
		return nil, err
	}

	// Keep our own copy so later writes cannot alias the caller's slice.
	base := rgbaImage(append([]byte(nil), rgba...), width, height)
	t.uploadLevel(0, 0, 0, width, height, base.Pix)
	if levels > 1 {
		t.base = base
		t.uploadMips()
	}

	t.logger.Debug("texture uploaded",
		zap.String("label", t.label),
		zap.Uint32("width", width),
		zap.Uint32("height", height),
		zap.Stringer("source_format", format),
		zap.Uint32("mip_levels", levels),
	)
	return t, nil
}

// NewBlank creates a 1x1 opaque white texture, the stand-in for untextured draws.
func NewBlank(g gpu.Context, options ...TextureBuilderOption) (Texture, error) {
	options = append([]TextureBuilderOption{WithLabel("Blank Texture")}, options...)
	options = append(options, WithMipmaps(false))
	return FromMemory(g, []byte{0xff, 0xff, 0xff, 0xff}, 1, 1, common.PixelFormatRGBA, options...)
}

// NewRenderTarget creates an empty color texture that can be attached to a framebuffer, sampled,
// and read back.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - width: the width in texels
//   - height: the height in texels
//   - options: texture options; WithMipmaps is ignored
//
// Returns:
//   - Texture: the new render target
//   - error: an allocation error
func NewRenderTarget(g gpu.Context, width, height uint32, options ...TextureBuilderOption) (Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: zero-sized render target %dx%d", ErrInvalidData, width, height)
	}
	opts := newTextureOptions("Render Target", options)
	t, err := newTexture(g, width, height, RenderTargetFormat, renderTargetUsage, 1, opts)
	if err != nil {
		return nil, err
	}
	t.renderTarget = true
	return t, nil
}

func newTexture(g gpu.Context, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage, levels uint32, opts textureOptions) (*texture, error) {
	tex, err := g.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label:     opts.label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: levels,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", opts.label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", opts.label, err)
	}

	samp, err := g.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         opts.label + " Sampler",
		AddressModeU:  common.Coalesce(opts.addressMode, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(opts.addressMode, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(opts.addressMode, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(opts.magFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(opts.minFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(opts.mipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   0.0,
		LodMaxClamp:   float32(levels),
		MaxAnisotropy: common.Coalesce(opts.maxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create sampler for texture %q: %w", opts.label, err)
	}

	return &texture{
		mu:        &sync.Mutex{},
		gpu:       g,
		label:     opts.label,
		logger:    opts.logger,
		width:     width,
		height:    height,
		format:    format,
		mipLevels: levels,
		unit:      opts.unit,
		texture:   tex,
		view:      view,
		sampler:   samp,
	}, nil
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Size() common.Vec2u {
	return common.NewVec2(t.width, t.height)
}

func (t *texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *texture) MipLevels() uint32 {
	return t.mipLevels
}

func (t *texture) Unit() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unit
}

func (t *texture) SetUnit(unit uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unit = unit
}

func (t *texture) IsRenderTarget() bool {
	return t.renderTarget
}

func (t *texture) Write(offset common.Vec2u, width, height uint32, format common.PixelFormat, data []byte) error {
	if err := checkRegion(offset, width, height, t.width, t.height); err != nil {
		return err
	}
	rgba, err := ToRGBA(data, width, height, format)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.texture == nil {
		return fmt.Errorf("texture %q has been released", t.label)
	}
	if width == 0 || height == 0 {
		return nil
	}

	t.uploadLevel(0, offset.X, offset.Y, width, height, rgba)
	if t.base != nil {
		patch(t.base, offset.X, offset.Y, width, height, rgba)
		t.uploadMips()
	}
	return nil
}

func (t *texture) Texture() *wgpu.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.texture
}

func (t *texture) View() *wgpu.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

func (t *texture) Sampler() *wgpu.Sampler {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sampler
}

func (t *texture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
	t.base = nil
}

// uploadLevel writes tightly packed RGBA pixels into a region of one mip level.
func (t *texture) uploadLevel(level, x, y, width, height uint32, pixels []byte) {
	t.gpu.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: level,
			Origin:   wgpu.Origin3D{X: x, Y: y},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
}

// uploadMips rebuilds levels 1..n from base and uploads them whole.
func (t *texture) uploadMips() {
	for i, img := range MipChain(t.base, t.mipLevels) {
		b := img.Bounds()
		t.uploadLevel(uint32(i+1), 0, 0, uint32(b.Dx()), uint32(b.Dy()), img.Pix)
	}
}

// checkRegion validates that a width x height region at offset fits inside a texW x texH texture.
func checkRegion(offset common.Vec2u, width, height, texW, texH uint32) error {
	if uint64(offset.X)+uint64(width) > uint64(texW) || uint64(offset.Y)+uint64(height) > uint64(texH) {
		return fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d", ErrOutOfBounds, width, height, offset.X, offset.Y, texW, texH)
	}
	return nil
}
