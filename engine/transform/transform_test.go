package transform

import (
	"testing"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func apply(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func TestNewTransformIsIdentity(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.Model().ApproxEqual(mgl32.Ident4()))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, tr.Scale())
}

func TestModelComposition(t *testing.T) {
	tr := NewTransform(
		WithPosition(mgl32.Vec3{100, 50, 0}),
		WithScale(mgl32.Vec3{32, 32, 1}),
		WithOrigin(mgl32.Vec3{0.5, 0.5, 0}),
	)

	// the origin maps onto position
	assert.True(t, apply(tr.Model(), mgl32.Vec3{0.5, 0.5, 0}).ApproxEqual(mgl32.Vec3{100, 50, 0}))
	assert.True(t, apply(tr.Model(), mgl32.Vec3{1, 1, 0}).ApproxEqual(mgl32.Vec3{116, 66, 0}))
}

func TestRotationAroundOrigin(t *testing.T) {
	tr := NewTransform(WithOrigin(mgl32.Vec3{0.5, 0.5, 0}))
	tr.SetRotationZ(common.HalfPi)

	got := apply(tr.Model(), mgl32.Vec3{1, 0.5, 0})
	assert.InDelta(t, 0, got[0], 1e-5)
	assert.InDelta(t, 0.5, got[1], 1e-5)
}

func TestModelCacheInvalidation(t *testing.T) {
	tr := NewTransform()
	first := tr.Model()

	tr.Translate(mgl32.Vec3{1, 2, 3})
	moved := tr.Model()
	assert.False(t, first.ApproxEqual(moved))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position())
	assert.Equal(t, moved, tr.Model())

	tr.SetScale(mgl32.Vec3{2, 2, 2})
	assert.True(t, apply(tr.Model(), mgl32.Vec3{1, 1, 1}).ApproxEqual(mgl32.Vec3{3, 4, 5}))
}

func TestRotateAccumulates(t *testing.T) {
	tr := NewTransform()
	tr.Rotate(common.HalfPi, mgl32.Vec3{0, 0, 1})
	tr.Rotate(common.HalfPi, mgl32.Vec3{0, 0, 1})

	got := apply(tr.Model(), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, -1, got[0], 1e-5)
	assert.InDelta(t, 0, got[1], 1e-5)
}
