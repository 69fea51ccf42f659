package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidDraw is returned for draw ranges the primitive cannot be assembled from.
var ErrInvalidDraw = errors.New("renderer: invalid draw")

// indexSource selects where a draw's indices come from.
type indexSource int

const (
	indexNone indexSource = iota
	// indexElements uses the vertex array's element buffer.
	indexElements
	// indexQuads uses the renderer's shared quad element buffer.
	indexQuads
	// indexLineLoop uses indices 0..n-1 followed by 0.
	indexLineLoop
)

// drawPlan is how a primitive and range map onto a single draw call.
type drawPlan struct {
	topology    wgpu.PrimitiveTopology
	stripFormat wgpu.IndexFormat
	index       indexSource

	// non-indexed
	firstVertex uint32
	vertexCount uint32

	// indexed
	firstIndex uint32
	indexCount uint32
	baseVertex int32
}

// empty reports whether the plan draws nothing.
func (p drawPlan) empty() bool {
	if p.index == indexNone {
		return p.vertexCount == 0
	}
	return p.indexCount == 0
}

// planDraw maps a primitive over [first, first+count) onto a draw call. For indexed draws first
// and count are in indices, otherwise in vertices.
//
// Parameters:
//   - primitive: the primitive to assemble
//   - indexed: whether the range addresses the vertex array's element buffer
//   - first: the first vertex or index
//   - count: the number of vertices or indices
//
// Returns:
//   - drawPlan: the draw call to encode
//   - error: ErrUnsupportedPrimitive for unknown primitives and for LineLoop or Quads with an
//     element buffer; ErrInvalidDraw for a quad range that is not a multiple of four
func planDraw(primitive buffer.DrawPrimitive, indexed bool, first, count uint32) (drawPlan, error) {
	topology, err := primitive.Topology()
	if err != nil {
		return drawPlan{}, err
	}
	plan := drawPlan{topology: topology}

	switch {
	case primitive == buffer.Quads:
		if indexed {
			return drawPlan{}, fmt.Errorf("%w: quads cannot be drawn from an element buffer", buffer.ErrUnsupportedPrimitive)
		}
		if count%4 != 0 {
			return drawPlan{}, fmt.Errorf("%w: quads need a multiple of 4 vertices, got %d", ErrInvalidDraw, count)
		}
		plan.index = indexQuads
		plan.indexCount = count / 4 * 6
		plan.baseVertex = int32(first)

	case primitive == buffer.LineLoop:
		if indexed {
			return drawPlan{}, fmt.Errorf("%w: line loops cannot be drawn from an element buffer", buffer.ErrUnsupportedPrimitive)
		}
		if count < 2 {
			return plan, nil
		}
		plan.index = indexLineLoop
		plan.indexCount = count + 1
		plan.baseVertex = int32(first)

	case indexed:
		plan.index = indexElements
		plan.firstIndex = first
		plan.indexCount = count

	default:
		plan.firstVertex = first
		plan.vertexCount = count
	}

	if plan.index != indexNone && primitive.IsStrip() {
		plan.stripFormat = wgpu.IndexFormatUint32
	}
	return plan, nil
}

// lineLoopIndices returns 0..n-1 followed by 0, closing a line strip of n vertices.
func lineLoopIndices(n uint32) []uint32 {
	if n == 0 {
		return nil
	}
	indices := make([]uint32, n+1)
	for i := range n {
		indices[i] = i
	}
	indices[n] = 0
	return indices
}

// growCapacity returns the smallest power of two no less than need, starting from floor.
func growCapacity(need, floor int) int {
	c := floor
	for c < need {
		c *= 2
	}
	return c
}
