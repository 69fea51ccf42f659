package texture

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/anthonynsimon/bild/transform"
	"github.com/cogentcore/webgpu/wgpu"
)

// ToRGBA expands tightly packed pixels of the given format into RGBA. Alpha pixels become white
// with the source alpha, RGB pixels become opaque. RGBA input is returned as is.
//
// Parameters:
//   - data: the source pixels, width*height*format.Channels() bytes
//   - width: the region width in pixels
//   - height: the region height in pixels
//   - format: the channel layout of data
//
// Returns:
//   - []byte: width*height*4 bytes of RGBA pixels
//   - error: ErrInvalidData if data has the wrong length
func ToRGBA(data []byte, width, height uint32, format common.PixelFormat) ([]byte, error) {
	pixels := int(width) * int(height)
	channels := format.Channels()
	if len(data) != pixels*channels {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d", ErrInvalidData, width, height, format, pixels*channels, len(data))
	}

	switch format {
	case common.PixelFormatRGBA:
		return data, nil
	case common.PixelFormatRGB:
		out := make([]byte, pixels*4)
		for i := 0; i < pixels; i++ {
			out[i*4+0] = data[i*3+0]
			out[i*4+1] = data[i*3+1]
			out[i*4+2] = data[i*3+2]
			out[i*4+3] = 0xff
		}
		return out, nil
	case common.PixelFormatAlpha:
		out := make([]byte, pixels*4)
		for i := 0; i < pixels; i++ {
			out[i*4+0] = 0xff
			out[i*4+1] = 0xff
			out[i*4+2] = 0xff
			out[i*4+3] = data[i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: pixel format %d", ErrInvalidData, format)
}

// MipLevelCount returns the length of a full mip chain for a width x height image.
func MipLevelCount(width, height uint32) uint32 {
	return uint32(bits.Len32(max(width, height, 1)))
}

// MipChain downsamples base into levels-1 successively halved images using a linear filter.
// Level n has dimensions max(1, w>>n) x max(1, h>>n).
//
// Parameters:
//   - base: mip level 0
//   - levels: the total number of levels including base
//
// Returns:
//   - []*image.RGBA: levels 1 through levels-1
func MipChain(base *image.RGBA, levels uint32) []*image.RGBA {
	if levels <= 1 {
		return nil
	}

	chain := make([]*image.RGBA, 0, levels-1)
	prev := base
	for level := uint32(1); level < levels; level++ {
		b := prev.Bounds()
		w := max(b.Dx()/2, 1)
		h := max(b.Dy()/2, 1)
		next := transform.Resize(prev, w, h, transform.Linear)
		chain = append(chain, next)
		prev = next
	}
	return chain
}

// BytesPerPixel returns the texel size of the color formats textures are created with.
func BytesPerPixel(format wgpu.TextureFormat) uint32 {
	switch format {
	case wgpu.TextureFormatR8Unorm:
		return 1
	case wgpu.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

// rgbaImage wraps tightly packed RGBA pixels in an image.RGBA without copying.
func rgbaImage(pixels []byte, width, height uint32) *image.RGBA {
	return &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
}

// patch copies a tightly packed RGBA region into dst at (x, y).
func patch(dst *image.RGBA, x, y, width, height uint32, region []byte) {
	rowLen := int(width) * 4
	for row := 0; row < int(height); row++ {
		start := dst.PixOffset(int(x), int(y)+row)
		copy(dst.Pix[start:start+rowLen], region[row*rowLen:(row+1)*rowLen])
	}
}
