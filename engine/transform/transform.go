// Package transform composes the model matrix of a 2D or 3D object from its position, origin,
// rotation and scale.
package transform

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// transform is the implementation of the Transform interface.
type transform struct {
	mu *sync.Mutex

	position mgl32.Vec3
	origin   mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	model mgl32.Mat4
	dirty bool
}

// Transform holds the placement of an object and composes it into a model matrix:
// translate to position, rotate, scale, with origin as the pivot.
type Transform interface {
	// Position returns the world position of the origin point.
	Position() mgl32.Vec3

	// SetPosition sets the world position of the origin point.
	SetPosition(p mgl32.Vec3)

	// Translate moves the position by delta.
	Translate(delta mgl32.Vec3)

	// Origin returns the local pivot that rotation and scale are applied around.
	Origin() mgl32.Vec3

	// SetOrigin sets the local pivot.
	SetOrigin(o mgl32.Vec3)

	// Rotation returns the orientation.
	Rotation() mgl32.Quat

	// SetRotation sets the orientation.
	SetRotation(q mgl32.Quat)

	// SetRotationZ sets the orientation to a rotation about +Z, the 2D case.
	//
	// Parameters:
	//   - radians: the counter-clockwise angle
	SetRotationZ(radians float32)

	// Rotate applies an additional rotation of angle radians about axis after the current one.
	Rotate(radians float32, axis mgl32.Vec3)

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale.
	SetScale(s mgl32.Vec3)

	// Model returns T(position) * R * S * T(-origin). The matrix is cached until a setter changes
	// one of its inputs.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	Model() mgl32.Mat4
}

var _ Transform = &transform{}

// NewTransform creates an identity Transform with the provided options applied.
//
// Parameters:
//   - options: functional options such as WithPosition and WithScale
//
// Returns:
//   - Transform: the new transform
func NewTransform(options ...TransformBuilderOption) Transform {
	t := &transform{
		mu:       &sync.Mutex{},
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		dirty:    true,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *transform) Position() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *transform) SetPosition(p mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = p
	t.dirty = true
}

func (t *transform) Translate(delta mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = t.position.Add(delta)
	t.dirty = true
}

func (t *transform) Origin() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.origin
}

func (t *transform) SetOrigin(o mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.origin = o
	t.dirty = true
}

func (t *transform) Rotation() mgl32.Quat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rotation
}

func (t *transform) SetRotation(q mgl32.Quat) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rotation = q.Normalize()
	t.dirty = true
}

func (t *transform) SetRotationZ(radians float32) {
	t.SetRotation(mgl32.QuatRotate(radians, mgl32.Vec3{0, 0, 1}))
}

func (t *transform) Rotate(radians float32, axis mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rotation = mgl32.QuatRotate(radians, axis.Normalize()).Mul(t.rotation).Normalize()
	t.dirty = true
}

func (t *transform) Scale() mgl32.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

func (t *transform) SetScale(s mgl32.Vec3) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = s
	t.dirty = true
}

func (t *transform) Model() mgl32.Mat4 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dirty {
		t.model = Compose(t.position, t.origin, t.rotation, t.scale)
		t.dirty = false
	}
	return t.model
}

// Compose builds T(position) * R * S * T(-origin).
func Compose(position, origin mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2])).
		Mul4(mgl32.Translate3D(-origin[0], -origin[1], -origin[2]))
}
