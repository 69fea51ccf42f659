package vertex

import (
	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SetColor sets the color of every vertex.
func SetColor(verts []Vertex2D, color mgl32.Vec4) {
	for i := range verts {
		verts[i].Color = color
	}
}

// Translate transforms every vertex position by a model matrix.
func Translate(verts []Vertex2D, model mgl32.Mat4) {
	for i := range verts {
		p := verts[i].Position
		out := model.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		verts[i].Position = [3]float32{out[0], out[1], out[2]}
	}
}

// FlipTexCoordsVertical mirrors the v coordinate of every vertex inside [min, max].
func FlipTexCoordsVertical(verts []Vertex2D, min, max float32) {
	for i := range verts {
		verts[i].TexCoord[1] = min + (max - verts[i].TexCoord[1])
	}
}

// NormalizeTexCoords converts texel coordinates produced by CalcTexCoords into [0, 1] texture space
// for a texture of the given size, flipping v to match textures loaded bottom row first.
func NormalizeTexCoords(verts []Vertex2D, bounds mgl32.Vec2) {
	for i := range verts {
		verts[i].TexCoord[0] /= bounds[0]
		verts[i].TexCoord[1] = 1 - verts[i].TexCoord[1]/bounds[1]
	}
}

// CalcTexCoords maps unit texture coordinates onto a sprite-sheet rectangle given in texels with a
// top-left origin. The results are texel coordinates; pass them through NormalizeTexCoords.
func CalcTexCoords(verts []Vertex2D, rect common.Rectu) {
	size := mgl32.Vec2{float32(rect.W), float32(rect.H)}
	offset := mgl32.Vec2{float32(rect.X), float32(rect.Y)}

	for i := range verts {
		u, v := verts[i].TexCoord[0], verts[i].TexCoord[1]
		dim := mgl32.Vec2{size[0] * u, size[1] * (1 - v)}
		tc := dim.Add(offset)
		verts[i].TexCoord = [2]float32{tc[0], tc[1]}
	}
}
