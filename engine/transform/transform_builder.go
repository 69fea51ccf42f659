package transform

import "github.com/go-gl/mathgl/mgl32"

// TransformBuilderOption is a functional option applied to a Transform during construction via NewTransform.
type TransformBuilderOption func(*transform)

// WithPosition sets the initial position.
//
// Parameters:
//   - p: the world position
//
// Returns:
//   - TransformBuilderOption: a function that applies the position option to a transform
func WithPosition(p mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.position = p
	}
}

// WithOrigin sets the initial pivot.
//
// Parameters:
//   - o: the local pivot point
//
// Returns:
//   - TransformBuilderOption: a function that applies the origin option to a transform
func WithOrigin(o mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.origin = o
	}
}

// WithRotation sets the initial orientation.
//
// Parameters:
//   - q: the orientation, normalized on assignment
//
// Returns:
//   - TransformBuilderOption: a function that applies the rotation option to a transform
func WithRotation(q mgl32.Quat) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = q.Normalize()
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - s: the per-axis scale
//
// Returns:
//   - TransformBuilderOption: a function that applies the scale option to a transform
func WithScale(s mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.scale = s
	}
}
