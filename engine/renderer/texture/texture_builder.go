package texture

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// TextureBuilderOption is a functional option applied to a Texture during construction.
type TextureBuilderOption func(*textureOptions)

// textureOptions collects construction settings. Zero sampler fields fall back to repeat
// addressing and linear filtering.
type textureOptions struct {
	label   string
	logger  *zap.Logger
	mipmaps bool
	unit    uint32

	addressMode   wgpu.AddressMode
	magFilter     wgpu.FilterMode
	minFilter     wgpu.FilterMode
	mipmapFilter  wgpu.MipmapFilterMode
	maxAnisotropy uint16
}

func newTextureOptions(defaultLabel string, options []TextureBuilderOption) textureOptions {
	o := textureOptions{label: defaultLabel, logger: zap.NewNop(), mipmaps: true}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// WithLabel sets the debug label of the GPU texture, view and sampler.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - TextureBuilderOption: a function that applies the label option to a texture
func WithLabel(label string) TextureBuilderOption {
	return func(o *textureOptions) {
		o.label = label
	}
}

// WithLogger sets the logger used for upload diagnostics.
//
// Parameters:
//   - logger: the logger to use; nil keeps the no-op default
//
// Returns:
//   - TextureBuilderOption: a function that applies the logger option to a texture
func WithLogger(logger *zap.Logger) TextureBuilderOption {
	return func(o *textureOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMipmaps enables or disables the generated mip chain. Mipmaps are on by default.
//
// Parameters:
//   - enabled: whether to allocate and fill a full mip chain
//
// Returns:
//   - TextureBuilderOption: a function that applies the mipmap option to a texture
func WithMipmaps(enabled bool) TextureBuilderOption {
	return func(o *textureOptions) {
		o.mipmaps = enabled
	}
}

// WithUnit sets the initial texture unit.
//
// Parameters:
//   - unit: the ordinal of the shader texture binding the texture feeds
//
// Returns:
//   - TextureBuilderOption: a function that applies the unit option to a texture
func WithUnit(unit uint32) TextureBuilderOption {
	return func(o *textureOptions) {
		o.unit = unit
	}
}

// WithAddressMode sets the sampler addressing for all axes.
//
// Parameters:
//   - mode: the address mode, e.g. wgpu.AddressModeClampToEdge
//
// Returns:
//   - TextureBuilderOption: a function that applies the address mode option to a texture
func WithAddressMode(mode wgpu.AddressMode) TextureBuilderOption {
	return func(o *textureOptions) {
		o.addressMode = mode
	}
}

// WithFilter sets the magnification, minification and mipmap filters. Nearest filtering suits pixel art.
//
// Parameters:
//   - magnify: the magnification filter
//   - minify: the minification filter
//   - mipmap: the filter between mip levels
//
// Returns:
//   - TextureBuilderOption: a function that applies the filter option to a texture
func WithFilter(magnify, minify wgpu.FilterMode, mipmap wgpu.MipmapFilterMode) TextureBuilderOption {
	return func(o *textureOptions) {
		o.magFilter = magnify
		o.minFilter = minify
		o.mipmapFilter = mipmap
	}
}

// WithMaxAnisotropy sets the sampler anisotropy clamp.
func WithMaxAnisotropy(n uint16) TextureBuilderOption {
	return func(o *textureOptions) {
		o.maxAnisotropy = n
	}
}
