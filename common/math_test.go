package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAngleConversions(t *testing.T) {
	assert.InDelta(t, HalfPi, Radians(90), 1e-6)
	assert.InDelta(t, 180, Degrees(Pi), 1e-4)
	assert.InDelta(t, 45, Degrees(Radians(45)), 1e-4)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(5, -1, 1))
	assert.Equal(t, float32(-1), Clamp(-5, -1, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, -1, 1))
	assert.Equal(t, float32(2), MinF(2, 3))
	assert.Equal(t, float32(3), MaxF(2, 3))
}

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	clip := m.Mul4x1(p.Vec4(1))
	return clip.Vec3().Mul(1 / clip.W())
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := Perspective(Radians(60), 16.0/9.0, 0.1, 100)

	near := project(m, mgl32.Vec3{0, 0, -0.1})
	far := project(m, mgl32.Vec3{0, 0, -100})

	assert.InDelta(t, 0, near.Z(), 1e-5)
	assert.InDelta(t, 1, far.Z(), 1e-5)
}

func TestOrthoMapsCornersToClipSpace(t *testing.T) {
	m := Ortho(0, 800, 600, 0, -1, 1)

	topLeft := project(m, mgl32.Vec3{0, 0, 0})
	bottomRight := project(m, mgl32.Vec3{800, 600, 0})

	assert.InDelta(t, -1, topLeft.X(), 1e-5)
	assert.InDelta(t, 1, topLeft.Y(), 1e-5)
	assert.InDelta(t, 1, bottomRight.X(), 1e-5)
	assert.InDelta(t, -1, bottomRight.Y(), 1e-5)
	assert.InDelta(t, 0.5, topLeft.Z(), 1e-5)
}
