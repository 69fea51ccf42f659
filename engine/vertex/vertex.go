// Package vertex defines the vertex formats uploaded by the renderer and the slice helpers used to
// position sprites and map them onto sprite-sheet regions.
package vertex

import (
	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
)

// White is the default vertex color.
var White = [4]float32{1, 1, 1, 1}

// Vertex2D is the sprite vertex: position, texture coordinate and RGBA color, 36 bytes.
type Vertex2D struct {
	Position [3]float32
	TexCoord [2]float32
	Color    [4]float32
}

// Vertex3D is the mesh vertex: position, normal and texture coordinate, 32 bytes.
type Vertex3D struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Vertex2DLayout returns the attribute layout of Vertex2D at shader locations 0, 1 and 2.
func Vertex2DLayout() []buffer.VertexAttribute {
	stride := uint64(common.SizeOf[Vertex2D]())
	return []buffer.VertexAttribute{
		{Location: 0, ElemCount: 3, DType: buffer.Float, Offset: 0, Stride: stride},
		{Location: 1, ElemCount: 2, DType: buffer.Float, Offset: 12, Stride: stride},
		{Location: 2, ElemCount: 4, DType: buffer.Float, Offset: 20, Stride: stride},
	}
}

// Vertex3DLayout returns the attribute layout of Vertex3D at shader locations 0, 1 and 2.
func Vertex3DLayout() []buffer.VertexAttribute {
	stride := uint64(common.SizeOf[Vertex3D]())
	return []buffer.VertexAttribute{
		{Location: 0, ElemCount: 3, DType: buffer.Float, Offset: 0, Stride: stride},
		{Location: 1, ElemCount: 3, DType: buffer.Float, Offset: 12, Stride: stride},
		{Location: 2, ElemCount: 2, DType: buffer.Float, Offset: 24, Stride: stride},
	}
}

// Layout returns the attribute layout of Vertex2D.
func (Vertex2D) Layout() []buffer.VertexAttribute {
	return Vertex2DLayout()
}

// Layout returns the attribute layout of Vertex3D.
func (Vertex3D) Layout() []buffer.VertexAttribute {
	return Vertex3DLayout()
}
