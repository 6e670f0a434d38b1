//go:build windows

package webgpu

import (
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is the opaque handle of a WebGPU tensor: a reference-counted
// storage buffer. Shallow copies of a tensor retain the same Buffer and
// the GPU memory is freed with the last Release.
type Buffer struct {
	buffer   *wgpu.Buffer
	size     uint64 // Allocated size, 4-byte aligned.
	dataSize uint64 // Bytes of tensor data.
	refCount atomic.Int32
	owner    *Backend
}

func newBuffer(owner *Backend, buffer *wgpu.Buffer, size, dataSize uint64) *Buffer {
	buf := &Buffer{
		buffer:   buffer,
		size:     size,
		dataSize: dataSize,
		owner:    owner,
	}
	buf.refCount.Store(1)
	owner.trackBufferAllocation(size)
	return buf
}

// Retain adds a reference.
func (b *Buffer) Retain() {
	if b == nil {
		return
	}
	b.refCount.Add(1)
}

// Release drops a reference and frees the GPU buffer with the last one.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	if b.refCount.Add(-1) != 0 {
		return
	}
	b.buffer.Release()
	b.buffer = nil
	b.owner.trackBufferRelease(b.size)
}

// Size returns the allocated size in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

// RefCount returns the number of live references.
func (b *Buffer) RefCount() int {
	return int(b.refCount.Load())
}

// Raw returns the underlying wgpu buffer, nil once freed.
// WARNING: The buffer stays owned by b.
func (b *Buffer) Raw() *wgpu.Buffer {
	return b.buffer
}

// alignedSize rounds n up to the 4-byte copy alignment, with a minimum of 4.
func alignedSize(n int) uint64 {
	return max(uint64(n+3)&^3, 4)
}
