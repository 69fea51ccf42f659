package buffer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexSlot is one vertex buffer bound to a VertexArray together with the layout it is read with.
type vertexSlot struct {
	buffer VertexBuffer
	attrs  []VertexAttribute
	layout wgpu.VertexBufferLayout
}

// vertexArray is the implementation of the VertexArray interface.
type vertexArray struct {
	mu            *sync.Mutex
	slots         []vertexSlot
	elementBuffer ElementBuffer
}

// VertexArray records which vertex buffers feed which shader locations, plus an optional element
// buffer. Each SetVertexLayout call binds one buffer to the next vertex buffer slot.
type VertexArray interface {
	// SetVertexLayout binds vb with the given attributes. Calling it again for a buffer already in
	// the array replaces that slot's attributes.
	//
	// Parameters:
	//   - vb: the vertex buffer supplying the attributes
	//   - attrs: the attributes read from vb
	//
	// Returns:
	//   - error: an error for invalid layouts or locations already fed by another slot
	SetVertexLayout(vb VertexBuffer, attrs ...VertexAttribute) error

	// SetElementBuffer sets the index buffer used by indexed draws. nil clears it.
	SetElementBuffer(eb ElementBuffer)

	// ElementBuffer returns the index buffer, or nil.
	ElementBuffer() ElementBuffer

	// Buffers returns the vertex buffers in slot order.
	Buffers() []VertexBuffer

	// Layouts returns the WebGPU buffer layouts in slot order.
	Layouts() []wgpu.VertexBufferLayout

	// LayoutKey returns a deterministic description of the layouts, used in pipeline cache keys.
	LayoutKey() string

	// VertexCount returns how many whole vertices the per-vertex slots hold, the minimum over those
	// slots. Allocation padding does not count.
	VertexCount() uint32

	// Reset drops every slot and the element buffer. The buffers themselves are not released.
	Reset()
}

var _ VertexArray = &vertexArray{}

// NewVertexArray returns an empty VertexArray.
func NewVertexArray() VertexArray {
	return &vertexArray{mu: &sync.Mutex{}}
}

func (va *vertexArray) SetVertexLayout(vb VertexBuffer, attrs ...VertexAttribute) error {
	if vb == nil {
		return fmt.Errorf("buffer: vertex layout needs a vertex buffer")
	}
	layout, err := BuildLayout(attrs...)
	if err != nil {
		return err
	}

	va.mu.Lock()
	defer va.mu.Unlock()

	slot := -1
	for i, s := range va.slots {
		if s.buffer == vb {
			slot = i
			continue
		}
		for _, existing := range s.attrs {
			for _, a := range attrs {
				if existing.Location == a.Location {
					return fmt.Errorf("buffer: location %d is already fed by %s", a.Location, s.buffer.Label())
				}
			}
		}
	}

	entry := vertexSlot{
		buffer: vb,
		attrs:  append([]VertexAttribute(nil), attrs...),
		layout: layout,
	}
	if slot >= 0 {
		va.slots[slot] = entry
	} else {
		va.slots = append(va.slots, entry)
	}
	return nil
}

func (va *vertexArray) SetElementBuffer(eb ElementBuffer) {
	va.mu.Lock()
	defer va.mu.Unlock()
	va.elementBuffer = eb
}

func (va *vertexArray) ElementBuffer() ElementBuffer {
	va.mu.Lock()
	defer va.mu.Unlock()
	return va.elementBuffer
}

func (va *vertexArray) Buffers() []VertexBuffer {
	va.mu.Lock()
	defer va.mu.Unlock()

	out := make([]VertexBuffer, len(va.slots))
	for i, s := range va.slots {
		out[i] = s.buffer
	}
	return out
}

func (va *vertexArray) Layouts() []wgpu.VertexBufferLayout {
	va.mu.Lock()
	defer va.mu.Unlock()
	return va.slotLayouts()
}

func (va *vertexArray) LayoutKey() string {
	va.mu.Lock()
	defer va.mu.Unlock()
	return layoutKey(va.slotLayouts())
}

func (va *vertexArray) VertexCount() uint32 {
	va.mu.Lock()
	defer va.mu.Unlock()

	var count uint32
	found := false
	for _, s := range va.slots {
		if s.layout.StepMode != wgpu.VertexStepModeVertex || s.layout.ArrayStride == 0 {
			continue
		}
		n := uint32(s.buffer.Len() / s.layout.ArrayStride)
		if !found || n < count {
			count = n
			found = true
		}
	}
	return count
}

func (va *vertexArray) Reset() {
	va.mu.Lock()
	defer va.mu.Unlock()
	va.slots = nil
	va.elementBuffer = nil
}

func (va *vertexArray) slotLayouts() []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, len(va.slots))
	for i, s := range va.slots {
		out[i] = s.layout
	}
	return out
}

// LayoutKey describes a list of buffer layouts as a string, stable for equal layouts.
func LayoutKey(layouts []wgpu.VertexBufferLayout) string {
	return layoutKey(layouts)
}

func layoutKey(layouts []wgpu.VertexBufferLayout) string {
	var sb strings.Builder
	for i, l := range layouts {
		if i > 0 {
			sb.WriteByte('|')
		}
		step := "v"
		if l.StepMode == wgpu.VertexStepModeInstance {
			step = "i"
		}
		fmt.Fprintf(&sb, "%s%d[", step, l.ArrayStride)
		for j, a := range l.Attributes {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d:%d@%d", a.ShaderLocation, uint32(a.Format), a.Offset)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
