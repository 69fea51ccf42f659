package vertex

import (
	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Quad returns the unit quad: four white vertices in the order bottom-left, top-left,
// bottom-right, top-right, which is the order buffer.QuadIndices expects.
func Quad() [4]Vertex2D {
	return [4]Vertex2D{
		{Position: [3]float32{0, 0, 0}, TexCoord: [2]float32{0, 1}, Color: White},
		{Position: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 0}, Color: White},
		{Position: [3]float32{1, 0, 0}, TexCoord: [2]float32{1, 1}, Color: White},
		{Position: [3]float32{1, 1, 0}, TexCoord: [2]float32{1, 0}, Color: White},
	}
}

// NewQuad builds a quad transformed by model. When textureRect is non-nil the texture coordinates
// select that region of a texture of textureSize texels.
//
// Parameters:
//   - model: the model matrix applied to the unit quad
//   - textureRect: an optional sprite-sheet region in texels, top-left origin
//   - textureSize: the size of the whole texture in texels
//
// Returns:
//   - [4]Vertex2D: the quad vertices
func NewQuad(model mgl32.Mat4, textureRect *common.Rectu, textureSize common.Vec2u) [4]Vertex2D {
	q := Quad()
	Translate(q[:], model)
	if textureRect != nil && textureSize.X > 0 && textureSize.Y > 0 {
		CalcTexCoords(q[:], *textureRect)
		NormalizeTexCoords(q[:], mgl32.Vec2{float32(textureSize.X), float32(textureSize.Y)})
	}
	return q
}

// NewQuadFromRect builds an axis-aligned quad covering rect at depth zero.
func NewQuadFromRect(rect common.Rectf) [4]Vertex2D {
	model := mgl32.Translate3D(rect.X, rect.Y, 0).Mul4(mgl32.Scale3D(rect.W, rect.H, 1))
	q := Quad()
	Translate(q[:], model)
	return q
}
