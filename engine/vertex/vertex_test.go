package vertex

import (
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexSizes(t *testing.T) {
	assert.Equal(t, uintptr(36), unsafe.Sizeof(Vertex2D{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Vertex3D{}))
}

func TestLayoutsBuild(t *testing.T) {
	layout, err := buffer.BuildLayout(Vertex2D{}.Layout()...)
	require.NoError(t, err)
	assert.Equal(t, uint64(36), layout.ArrayStride)
	assert.Len(t, layout.Attributes, 3)

	layout, err = buffer.BuildLayout(Vertex3D{}.Layout()...)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), layout.ArrayStride)
}

func TestQuad(t *testing.T) {
	q := Quad()
	assert.Equal(t, [3]float32{0, 1, 0}, q[1].Position)
	assert.Equal(t, [2]float32{1, 0}, q[3].TexCoord)
	for _, v := range q {
		assert.Equal(t, White, v.Color)
	}
}

func TestSetColorAndTranslate(t *testing.T) {
	q := Quad()
	SetColor(q[:], mgl32.Vec4{1, 0, 0, 0.5})
	assert.Equal(t, [4]float32{1, 0, 0, 0.5}, q[2].Color)

	Translate(q[:], mgl32.Translate3D(10, 20, 0).Mul4(mgl32.Scale3D(2, 3, 1)))
	assert.InDeltaSlice(t, []float32{10, 20, 0}, q[0].Position[:], 1e-5)
	assert.InDeltaSlice(t, []float32{12, 23, 0}, q[3].Position[:], 1e-5)
}

func TestFlipTexCoordsVertical(t *testing.T) {
	q := Quad()
	FlipTexCoordsVertical(q[:], 0, 1)
	assert.Equal(t, float32(0), q[0].TexCoord[1])
	assert.Equal(t, float32(1), q[1].TexCoord[1])
}

func TestCalcAndNormalizeTexCoords(t *testing.T) {
	q := Quad()
	CalcTexCoords(q[:], common.NewRect[uint32](32, 16, 16, 16))

	// bottom-left uv(0,1) lands on the rect's top-left texel
	assert.Equal(t, [2]float32{32, 16}, q[0].TexCoord)
	// top-right uv(1,0) lands on the far corner
	assert.Equal(t, [2]float32{48, 32}, q[3].TexCoord)

	NormalizeTexCoords(q[:], mgl32.Vec2{64, 64})
	assert.InDeltaSlice(t, []float32{0.5, 0.75}, q[0].TexCoord[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0.75, 0.5}, q[3].TexCoord[:], 1e-6)
}

func TestNewQuad(t *testing.T) {
	rect := common.NewRect[uint32](0, 0, 32, 32)
	q := NewQuad(mgl32.Scale3D(32, 32, 1), &rect, common.Vec2u{X: 64, Y: 32})
	assert.InDeltaSlice(t, []float32{32, 32, 0}, q[3].Position[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, 1}, q[0].TexCoord[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, 0}, q[3].TexCoord[:], 1e-6)

	plain := NewQuad(mgl32.Ident4(), nil, common.Vec2u{})
	assert.Equal(t, Quad(), plain)
}

func TestNewQuadFromRect(t *testing.T) {
	q := NewQuadFromRect(common.NewRect[float32](5, 6, 10, 20))
	assert.InDeltaSlice(t, []float32{5, 6, 0}, q[0].Position[:], 1e-5)
	assert.InDeltaSlice(t, []float32{15, 26, 0}, q[3].Position[:], 1e-5)
}
