package loader

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/anthonynsimon/bild/clone"
	bildtransform "github.com/anthonynsimon/bild/transform"
)

// Image is a decoded image as tightly packed 8-bit RGBA rows.
type Image struct {
	Width  uint32
	Height uint32

	// Format is the channel layout detected in the source file. Pixels are always RGBA.
	Format common.PixelFormat

	// Pixels holds Width*Height*4 bytes, first row first.
	Pixels []byte
}

// RGBA wraps the pixels in an image.RGBA that shares the backing slice.
func (i *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    i.Pixels,
		Stride: int(i.Width) * 4,
		Rect:   image.Rect(0, 0, int(i.Width), int(i.Height)),
	}
}

// DecodeFile decodes an image file, choosing the decoder by extension.
//
// Parameters:
//   - path: the image file
//   - flipVertical: reverse the row order so the bottom row comes first
//
// Returns:
//   - *Image: the decoded image
//   - error: an error if the file cannot be opened or decoded
func DecodeFile(path string, flipVertical bool) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error loading file %s: %w", path, err)
	}
	defer f.Close()

	img, err := resolveBackend(path).Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return FromImage(img, flipVertical), nil
}

// Decode decodes an image stream of any registered format.
//
// Parameters:
//   - r: the encoded image
//   - flipVertical: reverse the row order so the bottom row comes first
//
// Returns:
//   - *Image: the decoded image
//   - error: an error if the stream cannot be decoded
func Decode(r io.Reader, flipVertical bool) (*Image, error) {
	img, err := sniffBackend{}.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img, flipVertical), nil
}

// FromImage converts any image.Image into an Image.
func FromImage(img image.Image, flipVertical bool) *Image {
	var rgba *image.RGBA
	if flipVertical {
		rgba = bildtransform.FlipV(img)
	} else {
		rgba = clone.AsRGBA(img)
	}
	b := rgba.Bounds()

	return &Image{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: DetectFormat(img),
		Pixels: packed(rgba),
	}
}

// DetectFormat reports the channel layout an image carries: Alpha for alpha-only images, RGB for
// images without transparency, RGBA otherwise.
func DetectFormat(img image.Image) common.PixelFormat {
	switch img.(type) {
	case *image.Alpha, *image.Alpha16:
		return common.PixelFormatAlpha
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return common.PixelFormatRGB
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return common.PixelFormatRGB
	}
	return common.PixelFormatRGBA
}

// packed returns the pixels of rgba without row padding or a sub-image offset.
func packed(rgba *image.RGBA) []byte {
	b := rgba.Bounds()
	rowLen := b.Dx() * 4
	if rgba.Stride == rowLen && b.Min == (image.Point{}) && len(rgba.Pix) == rowLen*b.Dy() {
		return rgba.Pix
	}
	out := make([]byte, rowLen*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		start := rgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowLen:], rgba.Pix[start:start+rowLen])
	}
	return out
}
