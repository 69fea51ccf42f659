package buffer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// elementBuffer is the implementation of the ElementBuffer interface.
type elementBuffer struct {
	mu     *sync.Mutex
	gpu    gpu.Context
	label  string
	logger *zap.Logger

	buffer *wgpu.Buffer
	count  uint32
	usage  DrawUsage
}

// ElementBuffer is a GPU buffer of uint32 vertex indices.
type ElementBuffer interface {
	// Label returns the debug label of the buffer.
	Label() string

	// Count returns the number of indices held.
	Count() uint32

	// Usage returns the draw usage hint.
	Usage() DrawUsage

	// Format returns the index format, always uint32.
	Format() wgpu.IndexFormat

	// Buffer returns the underlying GPU buffer, or nil after Release.
	Buffer() *wgpu.Buffer

	// Write replaces indices starting at an index offset.
	//
	// Parameters:
	//   - first: the index position to start writing at
	//   - indices: the replacement indices
	//
	// Returns:
	//   - error: ErrOutOfRange if the write exceeds Count, or a queue error
	Write(first uint32, indices []uint32) error

	// Release frees the GPU buffer.
	Release()
}

var _ ElementBuffer = &elementBuffer{}

// NewElementBuffer uploads indices into a new index buffer.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - indices: the vertex indices
//   - usage: the draw usage hint
//   - options: buffer options such as WithLabel
//
// Returns:
//   - ElementBuffer: the new buffer
//   - error: an error if allocation or upload fails
func NewElementBuffer(g gpu.Context, indices []uint32, usage DrawUsage, options ...BufferBuilderOption) (ElementBuffer, error) {
	o := newBufferOptions("Element Buffer", options)
	eb := &elementBuffer{
		mu:     &sync.Mutex{},
		gpu:    g,
		label:  o.label,
		logger: o.logger,
		count:  uint32(len(indices)),
		usage:  usage,
	}

	size := max(uint64(len(indices))*4, minBufferSize)
	buf, err := g.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: eb.label,
		Size:  size,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", eb.label, err)
	}
	eb.buffer = buf

	if len(indices) > 0 {
		if err := g.Queue().WriteBuffer(buf, 0, common.SliceToBytes(indices)); err != nil {
			buf.Release()
			return nil, fmt.Errorf("failed to upload %s: %w", eb.label, err)
		}
	}
	eb.logger.Debug("element buffer allocated", zap.String("label", eb.label), zap.Uint32("count", eb.count))
	return eb, nil
}

// NewQuadElementBuffer builds the index buffer that draws quadCount quads of four vertices each
// as two triangles.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - quadCount: the number of quads
//   - options: buffer options such as WithLabel
//
// Returns:
//   - ElementBuffer: a buffer of 6*quadCount indices
//   - error: an error if allocation fails
func NewQuadElementBuffer(g gpu.Context, quadCount int, options ...BufferBuilderOption) (ElementBuffer, error) {
	options = append([]BufferBuilderOption{WithLabel("Quad Element Buffer")}, options...)
	return NewElementBuffer(g, QuadIndices(quadCount), Static, options...)
}

// QuadIndices returns the triangle indices for quadCount quads. The vertices of quad i are
// 4i..4i+3 laid out as bottom-left, top-left, bottom-right, top-right.
func QuadIndices(quadCount int) []uint32 {
	if quadCount <= 0 {
		return nil
	}
	indices := make([]uint32, 0, quadCount*6)
	for i := 0; i < quadCount; i++ {
		v := uint32(i * 4)
		indices = append(indices,
			v+0, v+1, v+2,
			v+2, v+1, v+3,
		)
	}
	return indices
}

func (e *elementBuffer) Label() string {
	return e.label
}

func (e *elementBuffer) Count() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *elementBuffer) Usage() DrawUsage {
	return e.usage
}

func (e *elementBuffer) Format() wgpu.IndexFormat {
	return wgpu.IndexFormatUint32
}

func (e *elementBuffer) Buffer() *wgpu.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

func (e *elementBuffer) Write(first uint32, indices []uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if uint64(first)+uint64(len(indices)) > uint64(e.count) {
		return fmt.Errorf("%w: indices [%d, %d) exceed count %d", ErrOutOfRange, first, int(first)+len(indices), e.count)
	}
	if len(indices) == 0 {
		return nil
	}
	if err := e.gpu.Queue().WriteBuffer(e.buffer, uint64(first)*4, common.SliceToBytes(indices)); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.label, err)
	}
	return nil
}

func (e *elementBuffer) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buffer != nil {
		e.buffer.Release()
		e.buffer = nil
	}
	e.count = 0
}
