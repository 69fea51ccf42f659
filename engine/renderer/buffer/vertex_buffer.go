package buffer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// minBufferSize is the smallest buffer allocated; WebGPU rejects binding zero-sized vertex buffers.
const minBufferSize = 4

const vertexBufferUsage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

// vertexBuffer is the implementation of the VertexBuffer interface.
type vertexBuffer struct {
	mu     *sync.Mutex
	gpu    gpu.Context
	label  string
	logger *zap.Logger

	buffer *wgpu.Buffer
	size   uint64
	length uint64
	usage  DrawUsage

	// mapped holds the CPU copy handed out by Map until Unmap.
	mapped    []byte
	mapAccess BufferAccess
}

// VertexBuffer is a GPU buffer of vertex data that can be bound to a VertexArray slot.
type VertexBuffer interface {
	// Label returns the debug label of the buffer.
	Label() string

	// Size returns the allocated size in bytes. It is always a multiple of four.
	Size() uint64

	// Len returns the number of bytes requested by the last allocation, before padding.
	Len() uint64

	// Usage returns the draw usage hint the buffer was last allocated with.
	Usage() DrawUsage

	// Buffer returns the underlying GPU buffer, or nil after Release.
	Buffer() *wgpu.Buffer

	// Alloc replaces the buffer storage with a new allocation holding data.
	// The previous GPU buffer is released.
	//
	// Parameters:
	//   - data: the new contents; the allocation is padded to four bytes
	//   - usage: the draw usage hint
	//
	// Returns:
	//   - error: an error if the buffer is mapped or allocation fails
	Alloc(data []byte, usage DrawUsage) error

	// Write uploads data at a byte offset without reallocating.
	//
	// Parameters:
	//   - offset: the destination byte offset, a multiple of four
	//   - data: the bytes to upload, a multiple of four in length
	//
	// Returns:
	//   - error: ErrUnaligned, ErrOutOfRange, ErrAlreadyMapped, or a queue error
	Write(offset uint64, data []byte) error

	// CopyFrom copies a byte range from another vertex buffer on the GPU.
	//
	// Parameters:
	//   - src: the source buffer
	//   - srcOffset: the byte offset to read from, a multiple of four
	//   - dstOffset: the byte offset to write to, a multiple of four
	//   - size: the number of bytes to copy, a multiple of four
	//
	// Returns:
	//   - error: an error if the range is invalid or the copy cannot be submitted
	CopyFrom(src VertexBuffer, srcOffset, dstOffset, size uint64) error

	// Map returns a CPU copy of the buffer contents for the requested access. Reads block until
	// the GPU copy is available or ctx ends. The slice stays valid until Unmap.
	//
	// Parameters:
	//   - ctx: cancels the wait for readback
	//   - access: ReadOnly and ReadWrite read the current contents, WriteOnly starts zeroed
	//
	// Returns:
	//   - []byte: the mapped bytes, Size() long
	//   - error: ErrAlreadyMapped, or a readback error
	Map(ctx context.Context, access BufferAccess) ([]byte, error)

	// Unmap ends a mapping. WriteOnly and ReadWrite mappings upload the mapped slice.
	//
	// Returns:
	//   - error: ErrNotMapped, or a queue error
	Unmap() error

	// Mapped reports whether the buffer is currently mapped.
	Mapped() bool

	// Release frees the GPU buffer.
	Release()
}

var _ VertexBuffer = &vertexBuffer{}

// NewZeroedVertexBuffer allocates a vertex buffer of size bytes with zeroed contents.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - size: the size in bytes; rounded up to four
//   - usage: the draw usage hint
//   - options: buffer options such as WithLabel
//
// Returns:
//   - VertexBuffer: the new buffer
//   - error: an error if allocation fails
func NewZeroedVertexBuffer(g gpu.Context, size uint64, usage DrawUsage, options ...BufferBuilderOption) (VertexBuffer, error) {
	vb := newVertexBuffer(g, options)
	if err := vb.allocate(size, usage); err != nil {
		return nil, err
	}
	return vb, nil
}

// NewVertexBuffer allocates a vertex buffer holding data.
//
// Parameters:
//   - g: the device and queue to allocate on
//   - data: the initial contents
//   - usage: the draw usage hint
//   - options: buffer options such as WithLabel
//
// Returns:
//   - VertexBuffer: the new buffer
//   - error: an error if allocation or upload fails
func NewVertexBuffer(g gpu.Context, data []byte, usage DrawUsage, options ...BufferBuilderOption) (VertexBuffer, error) {
	vb := newVertexBuffer(g, options)
	if err := vb.Alloc(data, usage); err != nil {
		return nil, err
	}
	return vb, nil
}

// NewVertexBufferFrom allocates a vertex buffer from a slice of fixed-size vertices.
func NewVertexBufferFrom[T any](g gpu.Context, verts []T, usage DrawUsage, options ...BufferBuilderOption) (VertexBuffer, error) {
	return NewVertexBuffer(g, common.SliceToBytes(verts), usage, options...)
}

func newVertexBuffer(g gpu.Context, options []BufferBuilderOption) *vertexBuffer {
	o := newBufferOptions("Vertex Buffer", options)
	return &vertexBuffer{
		mu:     &sync.Mutex{},
		gpu:    g,
		label:  o.label,
		logger: o.logger,
	}
}

func (b *vertexBuffer) Label() string {
	return b.label
}

func (b *vertexBuffer) Size() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *vertexBuffer) Len() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

func (b *vertexBuffer) Usage() DrawUsage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usage
}

func (b *vertexBuffer) Buffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer
}

func (b *vertexBuffer) Alloc(data []byte, usage DrawUsage) error {
	if err := b.allocate(uint64(len(data)), usage); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.gpu.Queue().WriteBuffer(b.buffer, 0, padTo4(data)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", b.label, err)
	}
	return nil
}

// allocate swaps in a fresh zero-initialized GPU buffer of at least size bytes.
func (b *vertexBuffer) allocate(size uint64, usage DrawUsage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mapped != nil {
		return ErrAlreadyMapped
	}

	allocated := max(gpu.AlignUp(size, 4), minBufferSize)
	buf, err := b.gpu.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.label,
		Size:  allocated,
		Usage: vertexBufferUsage,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", b.label, err)
	}

	if b.buffer != nil {
		b.buffer.Release()
	}
	b.buffer = buf
	b.size = allocated
	b.length = size
	b.usage = usage
	b.logger.Debug("vertex buffer allocated", zap.String("label", b.label), zap.Uint64("size", allocated), zap.Stringer("usage", usage))
	return nil
}

func (b *vertexBuffer) Write(offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mapped != nil {
		return ErrAlreadyMapped
	}
	if err := checkRange(offset, uint64(len(data)), b.size); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := b.gpu.Queue().WriteBuffer(b.buffer, offset, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.label, err)
	}
	return nil
}

func (b *vertexBuffer) CopyFrom(src VertexBuffer, srcOffset, dstOffset, size uint64) error {
	if src == nil {
		return fmt.Errorf("buffer: copy source is nil")
	}
	srcBuf, srcSize := src.Buffer(), src.Size()
	if srcBuf == nil {
		return fmt.Errorf("buffer: copy source %s is released", src.Label())
	}
	if err := checkRange(srcOffset, size, srcSize); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mapped != nil {
		return ErrAlreadyMapped
	}
	if err := checkRange(dstOffset, size, b.size); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if size == 0 {
		return nil
	}

	encoder, err := b.gpu.Device().CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()
	encoder.CopyBufferToBuffer(srcBuf, srcOffset, b.buffer, dstOffset, size)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to encode copy into %s: %w", b.label, err)
	}
	b.gpu.Queue().Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *vertexBuffer) Map(ctx context.Context, access BufferAccess) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mapped != nil {
		return nil, ErrAlreadyMapped
	}

	var data []byte
	if access.reads() {
		var err error
		data, err = gpu.ReadBuffer(ctx, b.gpu, b.buffer, 0, b.size)
		if err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", b.label, err)
		}
	} else {
		data = make([]byte, b.size)
	}

	b.mapped = data
	b.mapAccess = access
	return data, nil
}

func (b *vertexBuffer) Unmap() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mapped == nil {
		return ErrNotMapped
	}
	data, access := b.mapped, b.mapAccess
	b.mapped = nil

	if access.writes() {
		if err := b.gpu.Queue().WriteBuffer(b.buffer, 0, data); err != nil {
			return fmt.Errorf("failed to flush %s: %w", b.label, err)
		}
	}
	return nil
}

func (b *vertexBuffer) Mapped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mapped != nil
}

func (b *vertexBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
		b.logger.Debug("vertex buffer released", zap.String("label", b.label))
	}
	b.mapped = nil
	b.size = 0
}

// checkRange validates a 4-byte aligned [offset, offset+length) range against a buffer size.
func checkRange(offset, length, size uint64) error {
	if offset%4 != 0 || length%4 != 0 {
		return fmt.Errorf("%w: offset %d length %d", ErrUnaligned, offset, length)
	}
	if offset+length > size {
		return fmt.Errorf("%w: [%d, %d) exceeds %d bytes", ErrOutOfRange, offset, offset+length, size)
	}
	return nil
}

// padTo4 returns data extended with zeros to a multiple of four bytes.
func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	padded := make([]byte, gpu.AlignUp(uint64(len(data)), 4))
	copy(padded, data)
	return padded
}
