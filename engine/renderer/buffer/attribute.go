package buffer

import (
	"fmt"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexAttribute describes one shader input read from a vertex buffer.
type VertexAttribute struct {
	// Location is the @location index of the shader input.
	Location uint32
	// ElemCount is the number of components, 1 to 4.
	ElemCount int
	// IsInstanced advances the attribute once per instance instead of once per vertex.
	IsInstanced bool
	// DType is the component type.
	DType DataType
	// Offset is the byte offset of the attribute inside one vertex.
	Offset uint64
	// Stride is the byte distance between vertices. Zero means packed.
	Stride uint64
}

// Size returns the byte size of the attribute.
func (a VertexAttribute) Size() uint64 {
	return uint64(a.ElemCount) * a.DType.Size()
}

// VertexFormat maps a component type and count onto a WebGPU vertex format. Byte and Short
// attributes only exist in two- and four-component forms.
//
// Parameters:
//   - dtype: the component type
//   - count: the component count
//
// Returns:
//   - wgpu.VertexFormat: the matching vertex format
//   - error: ErrUnsupportedFormat when WebGPU has no such format
func VertexFormat(dtype DataType, count int) (wgpu.VertexFormat, error) {
	switch dtype {
	case Byte:
		switch count {
		case 2:
			return wgpu.VertexFormatSint8x2, nil
		case 4:
			return wgpu.VertexFormatSint8x4, nil
		}
	case Short:
		switch count {
		case 2:
			return wgpu.VertexFormatSint16x2, nil
		case 4:
			return wgpu.VertexFormatSint16x4, nil
		}
	case Int:
		switch count {
		case 1:
			return wgpu.VertexFormatSint32, nil
		case 2:
			return wgpu.VertexFormatSint32x2, nil
		case 3:
			return wgpu.VertexFormatSint32x3, nil
		case 4:
			return wgpu.VertexFormatSint32x4, nil
		}
	case Float:
		switch count {
		case 1:
			return wgpu.VertexFormatFloat32, nil
		case 2:
			return wgpu.VertexFormatFloat32x2, nil
		case 3:
			return wgpu.VertexFormatFloat32x3, nil
		case 4:
			return wgpu.VertexFormatFloat32x4, nil
		}
	}
	return 0, fmt.Errorf("%w: %d x %v", ErrUnsupportedFormat, count, dtype)
}

// BuildLayout converts the attributes read from one vertex buffer into a WebGPU buffer layout.
// All attributes must share a step mode. The stride is the first non-zero Stride, or the packed
// size of the attributes rounded up to four bytes.
//
// Parameters:
//   - attrs: the attributes sourced from the buffer
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for the pipeline's vertex state
//   - error: an error for an empty list, mixed step modes, bad formats or misaligned offsets
func BuildLayout(attrs ...VertexAttribute) (wgpu.VertexBufferLayout, error) {
	if len(attrs) == 0 {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: layout needs at least one attribute")
	}

	instanced := attrs[0].IsInstanced
	var stride, packed uint64
	seen := make(map[uint32]bool, len(attrs))
	wgpuAttrs := make([]wgpu.VertexAttribute, 0, len(attrs))

	for _, a := range attrs {
		if a.IsInstanced != instanced {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: location %d mixes per-vertex and per-instance step modes in one buffer", a.Location)
		}
		if seen[a.Location] {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: location %d declared twice", a.Location)
		}
		seen[a.Location] = true

		format, err := VertexFormat(a.DType, a.ElemCount)
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("location %d: %w", a.Location, err)
		}
		if align := min(a.DType.Size(), 4); a.Offset%align != 0 {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: location %d offset %d is not %d-byte aligned", a.Location, a.Offset, align)
		}
		if stride == 0 && a.Stride != 0 {
			stride = a.Stride
		}
		packed = max(packed, a.Offset+a.Size())

		wgpuAttrs = append(wgpuAttrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		})
	}

	if stride == 0 {
		stride = gpu.AlignUp(packed, 4)
	}
	if stride%4 != 0 {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: stride %d is not a multiple of 4", stride)
	}
	if packed > stride {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("buffer: attributes span %d bytes but stride is %d", packed, stride)
	}

	stepMode := wgpu.VertexStepModeVertex
	if instanced {
		stepMode = wgpu.VertexStepModeInstance
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    stepMode,
		Attributes:  wgpuAttrs,
	}, nil
}
