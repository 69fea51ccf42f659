package gpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// CopyRowAlignment is the byte alignment WebGPU requires for BytesPerRow in texture-to-buffer copies.
const CopyRowAlignment = 256

// CopyAlignment is the byte alignment WebGPU requires for buffer copy offsets and sizes.
const CopyAlignment = 4

// ErrMapFailed is returned when a staging buffer could not be mapped for reading.
var ErrMapFailed = errors.New("gpu: buffer map failed")

// AlignUp rounds value up to the next multiple of alignment. Alignment must be a power of two.
func AlignUp(value, alignment uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// BytesPerRowAligned returns the padded row pitch used when copying a texture into a buffer.
//
// Parameters:
//   - width: the row width in texels
//   - bytesPerPixel: the size of a single texel in bytes
//
// Returns:
//   - uint32: the row pitch rounded up to CopyRowAlignment
func BytesPerRowAligned(width, bytesPerPixel uint32) uint32 {
	return uint32(AlignUp(uint64(width*bytesPerPixel), CopyRowAlignment))
}

// UnpadRows strips the per-row padding added by BytesPerRowAligned, returning tightly packed rows.
// Rows missing from data are left zeroed.
//
// Parameters:
//   - data: the padded image data as read back from the GPU
//   - width: the image width in texels
//   - height: the image height in texels
//   - bytesPerPixel: the size of a single texel in bytes
//   - paddedRow: the row pitch of data
//
// Returns:
//   - []byte: a new slice of width*height*bytesPerPixel bytes
func UnpadRows(data []byte, width, height, bytesPerPixel, paddedRow uint32) []byte {
	rowLen := int(width * bytesPerPixel)
	out := make([]byte, rowLen*int(height))
	for y := 0; y < int(height); y++ {
		srcStart := y * int(paddedRow)
		if srcStart >= len(data) {
			break
		}
		srcEnd := min(srcStart+rowLen, len(data))
		copy(out[y*rowLen:], data[srcStart:srcEnd])
	}
	return out
}

// ReadBuffer copies a range of src into a staging buffer and maps it for reading, blocking until the
// map completes or ctx is done. src must have been created with BufferUsageCopySrc.
//
// Parameters:
//   - ctx: cancels the wait for the map to complete
//   - g: the device and queue that own src
//   - src: the buffer to read from
//   - offset: the byte offset into src, a multiple of CopyAlignment
//   - size: the number of bytes to read, a multiple of CopyAlignment
//
// Returns:
//   - []byte: a copy of the requested range
//   - error: an error if the copy could not be encoded, the map failed, or ctx ended first
func ReadBuffer(ctx context.Context, g Context, src *wgpu.Buffer, offset, size uint64) ([]byte, error) {
	if offset%CopyAlignment != 0 || size%CopyAlignment != 0 {
		return nil, fmt.Errorf("gpu: read range [%d, +%d) is not %d-byte aligned", offset, size, CopyAlignment)
	}
	if size == 0 {
		return []byte{}, nil
	}

	staging, err := g.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Staging Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := g.Device().CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	encoder.CopyBufferToBuffer(src, offset, staging, 0, size)
	if err := submit(g, encoder); err != nil {
		return nil, err
	}

	return readStaging(ctx, g, staging, size)
}

// ReadTexture copies mip level 0 of tex into a staging buffer and returns the pixels with the row
// padding removed. tex must have been created with TextureUsageCopySrc.
//
// Parameters:
//   - ctx: cancels the wait for the map to complete
//   - g: the device and queue that own tex
//   - tex: the texture to read
//   - width: the texture width in texels
//   - height: the texture height in texels
//   - bytesPerPixel: the texel size of the texture format
//
// Returns:
//   - []byte: tightly packed rows, top row first
//   - error: an error if the copy could not be encoded, the map failed, or ctx ended first
func ReadTexture(ctx context.Context, g Context, tex *wgpu.Texture, width, height, bytesPerPixel uint32) ([]byte, error) {
	bytesPerRow := BytesPerRowAligned(width, bytesPerPixel)
	size := uint64(bytesPerRow) * uint64(height)

	staging, err := g.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Texture Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := g.Device().CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	encoder.CopyTextureToBuffer(
		tex.AsImageCopy(),
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
	if err := submit(g, encoder); err != nil {
		return nil, err
	}

	padded, err := readStaging(ctx, g, staging, size)
	if err != nil {
		return nil, err
	}
	return UnpadRows(padded, width, height, bytesPerPixel, bytesPerRow), nil
}

// submit finishes encoder and submits the resulting command buffer, releasing both.
func submit(g Context, encoder *wgpu.CommandEncoder) error {
	defer encoder.Release()
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	g.Queue().Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

// readStaging maps staging for reading, polling the device until the callback fires, and copies
// the mapped range out before unmapping.
func readStaging(ctx context.Context, g Context, staging *wgpu.Buffer, size uint64) ([]byte, error) {
	done := make(chan wgpu.BufferMapAsyncStatus, 1)
	err := staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		done <- status
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapFailed, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case status := <-done:
			if status != wgpu.BufferMapAsyncStatusSuccess {
				return nil, fmt.Errorf("%w: status %v", ErrMapFailed, status)
			}
			mapped := staging.GetMappedRange(0, uint(size))
			out := make([]byte, len(mapped))
			copy(out, mapped)
			staging.Unmap()
			return out, nil
		default:
			g.Device().Poll(false, nil)
		}
	}
}
