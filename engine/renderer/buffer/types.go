// Package buffer wraps WebGPU buffers as vertex buffers, element (index) buffers and vertex arrays,
// together with the attribute layout descriptors that tell a pipeline how to read them.
package buffer

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrAlreadyMapped is returned when mapping, writing or reallocating a buffer that is currently mapped.
	ErrAlreadyMapped = errors.New("buffer: already mapped")

	// ErrNotMapped is returned by Unmap on a buffer that is not mapped.
	ErrNotMapped = errors.New("buffer: not mapped")

	// ErrUnsupportedFormat is returned for data type and component count pairs WebGPU has no vertex format for.
	ErrUnsupportedFormat = errors.New("buffer: unsupported vertex format")

	// ErrUnsupportedPrimitive is returned for primitives that cannot be drawn the requested way.
	ErrUnsupportedPrimitive = errors.New("buffer: unsupported primitive")

	// ErrUnaligned is returned when a write or copy range is not 4-byte aligned.
	ErrUnaligned = errors.New("buffer: range not 4-byte aligned")

	// ErrOutOfRange is returned when a write or copy range exceeds the buffer.
	ErrOutOfRange = errors.New("buffer: range out of bounds")
)

// DataType is the component type of a vertex attribute.
type DataType int

const (
	// Byte is a signed 8-bit integer component.
	Byte DataType = iota
	// Short is a signed 16-bit integer component.
	Short
	// Int is a signed 32-bit integer component.
	Int
	// Float is a 32-bit float component.
	Float
)

// Size returns the size of one component in bytes.
func (d DataType) Size() uint64 {
	switch d {
	case Byte:
		return 1
	case Short:
		return 2
	default:
		return 4
	}
}

func (d DataType) String() string {
	switch d {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// DrawPrimitive is the primitive assembled from vertices by a draw call.
type DrawPrimitive int

const (
	Points DrawPrimitive = iota
	Lines
	// LineLoop is a line strip that closes back on its first vertex.
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	// Quads draws every four vertices as two triangles through a quad element buffer.
	Quads
)

func (p DrawPrimitive) String() string {
	switch p {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineLoop:
		return "line_loop"
	case LineStrip:
		return "line_strip"
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle_strip"
	case Quads:
		return "quads"
	default:
		return fmt.Sprintf("DrawPrimitive(%d)", int(p))
	}
}

// Topology returns the WebGPU topology a primitive is rasterized with. LineLoop rasterizes as a
// line strip and Quads as a triangle list; the renderer supplies the indices that make that work.
//
// Returns:
//   - wgpu.PrimitiveTopology: the topology to build the pipeline with
//   - error: ErrUnsupportedPrimitive for unknown values
func (p DrawPrimitive) Topology() (wgpu.PrimitiveTopology, error) {
	switch p {
	case Points:
		return wgpu.PrimitiveTopologyPointList, nil
	case Lines:
		return wgpu.PrimitiveTopologyLineList, nil
	case LineLoop, LineStrip:
		return wgpu.PrimitiveTopologyLineStrip, nil
	case Triangles, Quads:
		return wgpu.PrimitiveTopologyTriangleList, nil
	case TriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedPrimitive, p)
	}
}

// IsStrip reports whether the primitive rasterizes as a strip topology.
func (p DrawPrimitive) IsStrip() bool {
	return p == LineStrip || p == LineLoop || p == TriangleStrip
}

// DrawUsage is the expected update frequency of a buffer's contents. WebGPU has no equivalent
// placement hint, so it is recorded for callers and logs only.
type DrawUsage int

const (
	Static DrawUsage = iota
	Dynamic
	Stream
)

func (u DrawUsage) String() string {
	switch u {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Stream:
		return "stream"
	default:
		return fmt.Sprintf("DrawUsage(%d)", int(u))
	}
}

// BufferAccess selects what a mapped buffer range is used for.
type BufferAccess int

const (
	// ReadOnly maps the current contents; Unmap discards the slice.
	ReadOnly BufferAccess = iota
	// WriteOnly maps a zeroed slice; Unmap uploads it.
	WriteOnly
	// ReadWrite maps the current contents; Unmap uploads them.
	ReadWrite
)

func (a BufferAccess) String() string {
	switch a {
	case ReadOnly:
		return "read_only"
	case WriteOnly:
		return "write_only"
	case ReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("BufferAccess(%d)", int(a))
	}
}

func (a BufferAccess) reads() bool {
	return a == ReadOnly || a == ReadWrite
}

func (a BufferAccess) writes() bool {
	return a == WriteOnly || a == ReadWrite
}
