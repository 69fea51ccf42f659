package loader

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// loaderBackend decodes one encoded image stream.
type loaderBackend interface {
	// Decode reads an image from r.
	//
	// Parameters:
	//   - r: the encoded image
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if decoding fails
	Decode(r io.Reader) (image.Image, error)
}

// decodeFunc adapts a format package's Decode function to loaderBackend.
type decodeFunc func(io.Reader) (image.Image, error)

func (f decodeFunc) Decode(r io.Reader) (image.Image, error) {
	return f(r)
}

// sniffBackend detects the format from the stream header.
type sniffBackend struct{}

func (sniffBackend) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

var backends = map[string]loaderBackend{
	".png":  decodeFunc(png.Decode),
	".jpg":  decodeFunc(jpeg.Decode),
	".jpeg": decodeFunc(jpeg.Decode),
	".gif":  decodeFunc(gif.Decode),
	".bmp":  decodeFunc(bmp.Decode),
	".tif":  decodeFunc(tiff.Decode),
	".tiff": decodeFunc(tiff.Decode),
	".webp": decodeFunc(webp.Decode),
}

// resolveBackend selects a decoder by file extension, falling back to header sniffing.
func resolveBackend(path string) loaderBackend {
	if b, ok := backends[strings.ToLower(filepath.Ext(path))]; ok {
		return b
	}
	return sniffBackend{}
}
