// package common contains small value types and helpers shared across the library. They are not
// interface-wrapped structs, just plain data.
package common

// Number is the set of numeric element types accepted by Vec2 and Rect.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Vec2 is a two component vector.
type Vec2[T Number] struct {
	X, Y T
}

type (
	Vec2i = Vec2[int32]
	Vec2f = Vec2[float32]
	Vec2u = Vec2[uint32]
)

// NewVec2 creates a Vec2 from its components.
func NewVec2[T Number](x, y T) Vec2[T] {
	return Vec2[T]{X: x, Y: y}
}

func (v Vec2[T]) Add(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X + o.X, v.Y + o.Y} }
func (v Vec2[T]) Sub(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X - o.X, v.Y - o.Y} }
func (v Vec2[T]) Mul(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X * o.X, v.Y * o.Y} }

// Div divides component-wise. Integer division by a zero component panics like the builtin operator.
func (v Vec2[T]) Div(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X / o.X, v.Y / o.Y} }

// Scale multiplies both components by s.
func (v Vec2[T]) Scale(s T) Vec2[T] { return Vec2[T]{v.X * s, v.Y * s} }

// Rect is an axis-aligned rectangle anchored at its top-left corner (X, Y).
type Rect[T Number] struct {
	X, Y, W, H T
}

type (
	Recti = Rect[int32]
	Rectf = Rect[float32]
	Rectu = Rect[uint32]
)

// NewRect creates a Rect from its origin and size.
func NewRect[T Number](x, y, w, h T) Rect[T] {
	return Rect[T]{X: x, Y: y, W: w, H: h}
}

// Right returns the x coordinate of the right edge.
func (r Rect[T]) Right() T { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect[T]) Bottom() T { return r.Y + r.H }

// Size returns the rectangle dimensions as a vector.
func (r Rect[T]) Size() Vec2[T] { return Vec2[T]{r.W, r.H} }

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect[T]) Contains(p Vec2[T]) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// PixelFormat describes the channel layout of tightly packed 8-bit pixel data.
type PixelFormat int

const (
	// PixelFormatRGBA is four channels per pixel.
	PixelFormatRGBA PixelFormat = iota

	// PixelFormatRGB is three channels per pixel with no alpha.
	PixelFormatRGB

	// PixelFormatAlpha is a single channel per pixel.
	PixelFormatAlpha
)

// Channels returns the number of bytes per pixel for the format.
func (f PixelFormat) Channels() int {
	switch f {
	case PixelFormatRGB:
		return 3
	case PixelFormatAlpha:
		return 1
	default:
		return 4
	}
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB:
		return "rgb"
	case PixelFormatAlpha:
		return "alpha"
	default:
		return "rgba"
	}
}
