//go:build windows

package webgpu

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensorimpl/internal/tensor"
	"github.com/cogentcore/webgpu/wgpu"
)

// ToOpaque uploads a contiguous strided tensor into a new storage buffer.
func (b *Backend) ToOpaque(src *tensor.StridedImpl) (*tensor.OpaqueImpl[*Buffer], error) {
	if !src.HasStorage() {
		return nil, fmt.Errorf("upload: %w", ErrReleased)
	}
	if !src.IsContiguous(tensor.MemoryFormatContiguous) {
		return nil, fmt.Errorf("upload: %w: shape %v strides %v", ErrNotContiguous, src.Shape(), src.Strides())
	}

	data := src.Bytes()
	size := alignedSize(len(data))
	contents := make([]byte, size)
	copy(contents, data)

	raw, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    b.config.Label + ":tensor",
		Contents: contents,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: failed to create buffer: %w", err)
	}

	buf := newBuffer(b, raw, size, uint64(len(data)))
	o, err := tensor.NewOpaque(tensor.WebGPUTypeID, src.DType(), tensor.WebGPU, buf, src.Shape())
	if err != nil {
		buf.Release()
		return nil, err
	}
	b.log.WithField("bytes", size).Debug("uploaded tensor")
	return o, nil
}

// ToStrided downloads o into a new contiguous CPU tensor through a staging
// buffer. It blocks until the GPU copy has completed.
func (b *Backend) ToStrided(o *tensor.OpaqueImpl[*Buffer]) (*tensor.StridedImpl, error) {
	if o.TypeID() != tensor.WebGPUTypeID {
		return nil, fmt.Errorf("download: %w: type id %s", ErrWrongTypeID, o.TypeID())
	}
	buf := *o.UnsafeOpaqueHandle()
	if buf == nil || buf.buffer == nil {
		return nil, fmt.Errorf("download: %w", ErrReleased)
	}
	if buf.owner != b {
		return nil, fmt.Errorf("download: %w", ErrForeignBuffer)
	}

	data, err := b.readBuffer(buf.buffer, buf.size)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	dst, err := tensor.NewStrided(tensor.CPUTypeID, o.DType(), tensor.CPU, o.Shape())
	if err != nil {
		return nil, fmt.Errorf("download: failed to create result tensor: %w", err)
	}
	copy(dst.Bytes(), data[:buf.dataSize])
	return dst, nil
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a pooled staging buffer since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	sb, err := b.staging.acquire(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	staging := sb.buffer
	mapped := false
	defer func() {
		if mapped {
			staging.Unmap()
		}
		b.staging.put(sb)
	}()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return nil, fmt.Errorf("failed to finish commands: %w", err)
	}
	b.queue.Submit(cmdBuffer)
	cmdBuffer.Release()

	var status wgpu.BufferMapAsyncStatus
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.New("failed to map staging buffer: map was not successful")
	}
	mapped = true

	result := make([]byte, size)
	copy(result, staging.GetMappedRange(0, uint(size)))
	return result, nil
}
