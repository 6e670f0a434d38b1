//go:build !windows

package webgpu

import "github.com/born-ml/tensorimpl/internal/tensor"

// Backend is unavailable on this platform.
type Backend struct{}

// Buffer is the opaque handle of a WebGPU tensor.
type Buffer struct{}

// Retain is a no-op on this platform.
func (b *Buffer) Retain() {}

// Release is a no-op on this platform.
func (b *Buffer) Release() {}

// Size returns 0 on this platform.
func (b *Buffer) Size() uint64 { return 0 }

// IsAvailable reports false on this platform.
func IsAvailable() bool { return false }

// New always fails with ErrUnavailable on this platform.
func New(cfg Config) (*Backend, error) {
	cfg.logger().Debug("webgpu backend is not built for this platform")
	return nil, ErrUnavailable
}

// Name returns the backend name.
func (b *Backend) Name() string { return "WebGPU (unavailable)" }

// Device returns the compute device.
func (b *Backend) Device() tensor.Device { return tensor.WebGPU }

// ToOpaque fails with ErrUnavailable.
func (b *Backend) ToOpaque(*tensor.StridedImpl) (*tensor.OpaqueImpl[*Buffer], error) {
	return nil, ErrUnavailable
}

// ToStrided fails with ErrUnavailable.
func (b *Backend) ToStrided(*tensor.OpaqueImpl[*Buffer]) (*tensor.StridedImpl, error) {
	return nil, ErrUnavailable
}

// MemoryStats returns zero statistics.
func (b *Backend) MemoryStats() MemoryStats { return MemoryStats{} }

// Release is a no-op on this platform.
func (b *Backend) Release() {}
