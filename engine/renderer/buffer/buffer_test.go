package buffer

import (
	"strconv"
	"testing"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVertexBuffer satisfies VertexBuffer without a device so vertex array bookkeeping can be tested.
// size is the requested length; Size pads it the way allocate does.
type fakeVertexBuffer struct {
	VertexBuffer
	label string
	size  uint64
}

func (f *fakeVertexBuffer) Label() string { return f.label }
func (f *fakeVertexBuffer) Len() uint64   { return f.size }
func (f *fakeVertexBuffer) Size() uint64  { return max(gpu.AlignUp(f.size, 4), minBufferSize) }

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		dtype DataType
		count int
		want  wgpu.VertexFormat
	}{
		{Float, 1, wgpu.VertexFormatFloat32},
		{Float, 3, wgpu.VertexFormatFloat32x3},
		{Float, 4, wgpu.VertexFormatFloat32x4},
		{Int, 2, wgpu.VertexFormatSint32x2},
		{Short, 4, wgpu.VertexFormatSint16x4},
		{Byte, 2, wgpu.VertexFormatSint8x2},
	}
	for _, tt := range tests {
		got, err := VertexFormat(tt.dtype, tt.count)
		require.NoError(t, err, "%v x %d", tt.dtype, tt.count)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []struct {
		dtype DataType
		count int
	}{{Byte, 3}, {Short, 1}, {Float, 5}, {Int, 0}} {
		_, err := VertexFormat(bad.dtype, bad.count)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	}
}

func TestDrawPrimitiveTopology(t *testing.T) {
	topo, err := LineLoop.Topology()
	require.NoError(t, err)
	assert.Equal(t, wgpu.PrimitiveTopologyLineStrip, topo)

	topo, err = Quads.Topology()
	require.NoError(t, err)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, topo)

	assert.True(t, TriangleStrip.IsStrip())
	assert.False(t, Triangles.IsStrip())

	_, err = DrawPrimitive(42).Topology()
	assert.ErrorIs(t, err, ErrUnsupportedPrimitive)
}

func TestBuildLayout_Vertex2D(t *testing.T) {
	layout, err := BuildLayout(
		VertexAttribute{Location: 0, ElemCount: 3, DType: Float, Offset: 0, Stride: 36},
		VertexAttribute{Location: 1, ElemCount: 2, DType: Float, Offset: 12, Stride: 36},
		VertexAttribute{Location: 2, ElemCount: 4, DType: Float, Offset: 20, Stride: 36},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(36), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, uint64(20), layout.Attributes[2].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)
}

func TestBuildLayout_PackedStride(t *testing.T) {
	layout, err := BuildLayout(VertexAttribute{Location: 3, ElemCount: 2, DType: Short, IsInstanced: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layout.StepMode)

	layout, err = BuildLayout(VertexAttribute{Location: 0, ElemCount: 3, DType: Float})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), layout.ArrayStride)
}

func TestBuildLayout_Errors(t *testing.T) {
	_, err := BuildLayout()
	assert.Error(t, err)

	_, err = BuildLayout(
		VertexAttribute{Location: 0, ElemCount: 2, DType: Float},
		VertexAttribute{Location: 1, ElemCount: 2, DType: Float, Offset: 8, IsInstanced: true},
	)
	assert.ErrorContains(t, err, "step modes")

	_, err = BuildLayout(
		VertexAttribute{Location: 0, ElemCount: 2, DType: Float},
		VertexAttribute{Location: 0, ElemCount: 2, DType: Float, Offset: 8},
	)
	assert.ErrorContains(t, err, "declared twice")

	_, err = BuildLayout(VertexAttribute{Location: 0, ElemCount: 2, DType: Float, Offset: 2})
	assert.ErrorContains(t, err, "aligned")

	_, err = BuildLayout(VertexAttribute{Location: 0, ElemCount: 4, DType: Float, Stride: 8})
	assert.ErrorContains(t, err, "stride")

	_, err = BuildLayout(VertexAttribute{Location: 0, ElemCount: 3, DType: Byte})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestQuadIndices(t *testing.T) {
	assert.Nil(t, QuadIndices(0))
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, QuadIndices(1))

	indices := QuadIndices(3)
	require.Len(t, indices, 18)
	assert.Equal(t, []uint32{8, 9, 10, 10, 9, 11}, indices[12:])
	for _, idx := range indices {
		assert.Less(t, idx, uint32(12))
	}
}

func TestVertexArray_SetVertexLayout(t *testing.T) {
	va := NewVertexArray()
	verts := &fakeVertexBuffer{label: "verts", size: 36 * 4}
	instances := &fakeVertexBuffer{label: "instances", size: 64}

	require.NoError(t, va.SetVertexLayout(verts,
		VertexAttribute{Location: 0, ElemCount: 3, DType: Float, Stride: 36},
		VertexAttribute{Location: 1, ElemCount: 2, DType: Float, Offset: 12, Stride: 36},
	))
	require.NoError(t, va.SetVertexLayout(instances,
		VertexAttribute{Location: 5, ElemCount: 4, DType: Float, IsInstanced: true},
	))
	assert.Len(t, va.Buffers(), 2)
	assert.Equal(t, uint32(4), va.VertexCount())

	err := va.SetVertexLayout(instances, VertexAttribute{Location: 0, ElemCount: 4, DType: Float, IsInstanced: true})
	assert.ErrorContains(t, err, "already fed")

	// rebinding the same buffer replaces its slot
	require.NoError(t, va.SetVertexLayout(verts, VertexAttribute{Location: 0, ElemCount: 3, DType: Float}))
	layouts := va.Layouts()
	require.Len(t, layouts, 2)
	assert.Equal(t, uint64(12), layouts[0].ArrayStride)
	assert.Equal(t, uint32(12), va.VertexCount())

	assert.Equal(t, "v12[0:"+itoa(uint32(wgpu.VertexFormatFloat32x3))+"@0]|i16[5:"+itoa(uint32(wgpu.VertexFormatFloat32x4))+"@0]", va.LayoutKey())

	va.Reset()
	assert.Empty(t, va.Layouts())
	assert.Equal(t, "", va.LayoutKey())
}

func TestVertexArray_VertexCountIgnoresPadding(t *testing.T) {
	tests := []struct {
		name   string
		length uint64
		stride uint64
		want   uint32
	}{
		{"partial trailing vertex", 15, 8, 1},
		{"empty buffer", 0, 4, 0},
		{"exact fit", 24, 8, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vb := &fakeVertexBuffer{label: "verts", size: tt.length}
			require.GreaterOrEqual(t, vb.Size(), tt.length)

			va := NewVertexArray()
			require.NoError(t, va.SetVertexLayout(vb, VertexAttribute{Location: 0, ElemCount: 1, DType: Float, Stride: tt.stride}))
			assert.Equal(t, tt.want, va.VertexCount())
		})
	}
}

func TestLayoutKeyStable(t *testing.T) {
	a, err := BuildLayout(VertexAttribute{Location: 0, ElemCount: 2, DType: Float})
	require.NoError(t, err)
	b, err := BuildLayout(VertexAttribute{Location: 0, ElemCount: 2, DType: Float})
	require.NoError(t, err)
	c, err := BuildLayout(VertexAttribute{Location: 0, ElemCount: 2, DType: Float, IsInstanced: true})
	require.NoError(t, err)

	assert.Equal(t, LayoutKey([]wgpu.VertexBufferLayout{a}), LayoutKey([]wgpu.VertexBufferLayout{b}))
	assert.NotEqual(t, LayoutKey([]wgpu.VertexBufferLayout{a}), LayoutKey([]wgpu.VertexBufferLayout{c}))
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, checkRange(0, 16, 16))
	assert.ErrorIs(t, checkRange(2, 4, 16), ErrUnaligned)
	assert.ErrorIs(t, checkRange(0, 6, 16), ErrUnaligned)
	assert.ErrorIs(t, checkRange(12, 8, 16), ErrOutOfRange)
}

func TestPadTo4(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 4}, padTo4([]byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 0}, padTo4([]byte{1, 2, 3}))
	assert.Len(t, padTo4([]byte{1, 2, 3, 4, 5}), 8)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "float", Float.String())
	assert.Equal(t, "line_loop", LineLoop.String())
	assert.Equal(t, "dynamic", Dynamic.String())
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.True(t, ReadWrite.reads() && ReadWrite.writes())
	assert.False(t, WriteOnly.reads())
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
