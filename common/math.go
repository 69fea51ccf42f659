package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Angle and numeric constants shared by the transform, camera and renderer packages.
const (
	Pi       float32 = math.Pi
	HalfPi   float32 = math.Pi / 2
	TwoPi    float32 = math.Pi * 2
	DegToRad float32 = math.Pi / 180
	RadToDeg float32 = 180 / math.Pi
	Euler    float32 = math.E
)

// Radians converts an angle in degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * DegToRad
}

// Degrees converts an angle in radians to degrees.
func Degrees(radians float32) float32 {
	return radians * RadToDeg
}

// MinF returns the smaller of a and b.
func MinF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// MaxF returns the larger of a and b.
func MaxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts s to the closed range [lo, hi].
//
// Parameters:
//   - s: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: s limited to [lo, hi]
func Clamp(s, lo, hi float32) float32 {
	return MinF(MaxF(s, lo), hi)
}

// Perspective builds a right-handed perspective projection matrix that maps view-space depth
// into WebGPU's [0, 1] clip range. mgl32.Perspective targets OpenGL's [-1, 1] range and would
// clip the near half of the frustum on a WebGPU surface.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport width divided by height
//   - near: distance to the near clip plane
//   - far: distance to the far clip plane
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	rangeInv := 1.0 / (near - far)

	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far * rangeInv
	m[11] = -1
	m[14] = near * far * rangeInv
	return m
}

// Ortho builds a right-handed orthographic projection matrix with WebGPU [0, 1] depth.
//
// Parameters:
//   - left, right: the horizontal extents of the view volume
//   - bottom, top: the vertical extents of the view volume
//   - near, far: the depth extents of the view volume
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)

	var m mgl32.Mat4
	m[0] = 2 * rl
	m[5] = 2 * tb
	m[10] = -fn
	m[12] = -(right + left) * rl
	m[13] = -(top + bottom) * tb
	m[14] = -near * fn
	m[15] = 1
	return m
}
