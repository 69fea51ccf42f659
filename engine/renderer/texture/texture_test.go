package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRGBA(t *testing.T) {
	rgba, err := ToRGBA([]byte{1, 2, 3, 4}, 1, 1, common.PixelFormatRGBA)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, rgba)

	rgba, err = ToRGBA([]byte{10, 20, 30, 40, 50, 60}, 2, 1, common.PixelFormatRGB)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 255, 40, 50, 60, 255}, rgba)

	rgba, err = ToRGBA([]byte{0, 128}, 1, 2, common.PixelFormatAlpha)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 255, 0, 255, 255, 255, 128}, rgba)
}

func TestToRGBA_WrongLength(t *testing.T) {
	_, err := ToRGBA([]byte{1, 2, 3}, 1, 1, common.PixelFormatRGBA)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = ToRGBA(make([]byte, 12), 2, 2, common.PixelFormatAlpha)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestMipLevelCount(t *testing.T) {
	assert.Equal(t, uint32(1), MipLevelCount(1, 1))
	assert.Equal(t, uint32(2), MipLevelCount(2, 1))
	assert.Equal(t, uint32(9), MipLevelCount(256, 256))
	assert.Equal(t, uint32(9), MipLevelCount(300, 20))
	assert.Equal(t, uint32(10), MipLevelCount(20, 512))
	assert.Equal(t, uint32(1), MipLevelCount(0, 0))
}

func TestMipChain(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 8, 2))
	for x := 0; x < 8; x++ {
		for y := 0; y < 2; y++ {
			base.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	chain := MipChain(base, MipLevelCount(8, 2))
	require.Len(t, chain, 3)
	assert.Equal(t, image.Rect(0, 0, 4, 1), chain[0].Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 1), chain[1].Bounds())
	assert.Equal(t, image.Rect(0, 0, 1, 1), chain[2].Bounds())

	// a uniform image stays uniform
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, chain[2].RGBAAt(0, 0))

	assert.Nil(t, MipChain(base, 1))
}

func TestPatch(t *testing.T) {
	dst := rgbaImage(make([]byte, 3*3*4), 3, 3)
	patch(dst, 1, 1, 2, 1, []byte{1, 1, 1, 1, 2, 2, 2, 2})

	assert.Equal(t, color.RGBA{1, 1, 1, 1}, dst.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{2, 2, 2, 2}, dst.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(1, 2))
}

func TestCheckRegion(t *testing.T) {
	assert.NoError(t, checkRegion(common.Vec2u{X: 0, Y: 0}, 4, 4, 4, 4))
	assert.NoError(t, checkRegion(common.Vec2u{X: 2, Y: 3}, 2, 1, 4, 4))
	assert.ErrorIs(t, checkRegion(common.Vec2u{X: 3, Y: 0}, 2, 1, 4, 4), ErrOutOfBounds)
	assert.ErrorIs(t, checkRegion(common.Vec2u{X: 0, Y: 4}, 1, 1, 4, 4), ErrOutOfBounds)
}

func TestBytesPerPixel(t *testing.T) {
	assert.Equal(t, uint32(4), BytesPerPixel(ColorFormat))
	assert.Equal(t, uint32(4), BytesPerPixel(RenderTargetFormat))
	assert.Equal(t, uint32(1), BytesPerPixel(wgpu.TextureFormatR8Unorm))
}

func TestTextureOptions(t *testing.T) {
	o := newTextureOptions("Texture", nil)
	assert.True(t, o.mipmaps)
	assert.Equal(t, "Texture", o.label)
	assert.NotNil(t, o.logger)

	o = newTextureOptions("Texture", []TextureBuilderOption{
		WithLabel("atlas"),
		WithMipmaps(false),
		WithUnit(2),
		WithAddressMode(wgpu.AddressModeClampToEdge),
		WithFilter(wgpu.FilterModeNearest, wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest),
		WithLogger(nil),
	})
	assert.Equal(t, "atlas", o.label)
	assert.False(t, o.mipmaps)
	assert.Equal(t, uint32(2), o.unit)
	assert.Equal(t, wgpu.AddressModeClampToEdge, o.addressMode)
	assert.Equal(t, wgpu.FilterModeNearest, o.magFilter)
	assert.NotNil(t, o.logger)
}
