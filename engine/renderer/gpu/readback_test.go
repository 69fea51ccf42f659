package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), AlignUp(0, 4))
	assert.Equal(t, uint64(4), AlignUp(1, 4))
	assert.Equal(t, uint64(256), AlignUp(256, 256))
	assert.Equal(t, uint64(512), AlignUp(257, 256))
	assert.Equal(t, uint64(7), AlignUp(7, 0))
}

func TestBytesPerRowAligned(t *testing.T) {
	assert.Equal(t, uint32(256), BytesPerRowAligned(1, 4))
	assert.Equal(t, uint32(256), BytesPerRowAligned(64, 4))
	assert.Equal(t, uint32(3328), BytesPerRowAligned(800, 4))
	assert.Equal(t, uint32(256), BytesPerRowAligned(3, 1))
}

func TestUnpadRows(t *testing.T) {
	const width, height, bpp = 2, 3, 4
	padded := make([]byte, CopyRowAlignment*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width*bpp; x++ {
			padded[y*CopyRowAlignment+x] = byte(y*10 + x)
		}
		padded[y*CopyRowAlignment+width*bpp] = 0xFF
	}

	out := UnpadRows(padded, width, height, bpp, CopyRowAlignment)
	assert.Len(t, out, width*height*bpp)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, out[:8])
	assert.Equal(t, []byte{20, 21, 22, 23, 24, 25, 26, 27}, out[16:])
	assert.NotContains(t, out, byte(0xFF))
}

func TestUnpadRows_ShortInput(t *testing.T) {
	out := UnpadRows([]byte{1, 2, 3, 4}, 1, 2, 4, CopyRowAlignment)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, out)
}
