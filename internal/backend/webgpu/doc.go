// Package webgpu produces opaque tensors whose data lives in WebGPU
// storage buffers. The implementation uses github.com/cogentcore/webgpu and
// is built on windows; other platforms get a stub where IsAvailable
// reports false and New returns ErrUnavailable.
package webgpu

import (
	"errors"

	"github.com/born-ml/tensorimpl/internal/tensor"
	"github.com/sirupsen/logrus"
)

// Common errors.
var (
	ErrUnavailable   = errors.New("webgpu: not available on this system")
	ErrNotContiguous = errors.New("webgpu: source tensor is not contiguous")
	ErrReleased      = errors.New("webgpu: tensor has been released")
	ErrWrongTypeID   = errors.New("webgpu: opaque tensor was not produced by a WebGPU backend")
	ErrForeignBuffer = errors.New("webgpu: buffer belongs to another backend")
)

// Config configures a Backend.
type Config struct {
	// HighPerformance requests the discrete adapter when one exists.
	HighPerformance bool
	// Label prefixes the labels of created GPU buffers.
	Label string
	// Logger receives backend events. Defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// DefaultConfig returns a high-performance configuration.
func DefaultConfig() Config {
	return Config{
		HighPerformance: true,
		Label:           "born",
	}
}

// MemoryStats represents GPU memory usage statistics.
type MemoryStats struct {
	// Bytes held by live buffers
	AllocatedBytes uint64
	// Peak of AllocatedBytes
	PeakMemoryBytes uint64
	// Number of live buffers
	ActiveBuffers int64
	// Staging pool statistics
	StagingHits   uint64
	StagingMisses uint64
	StagingPooled int
}

func (c Config) logger() *logrus.Entry {
	l := c.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}
	return l.WithField("backend", "webgpu")
}

// Compile-time check that Backend is a tensor.Producer.
var _ tensor.Producer[*Buffer] = (*Backend)(nil)
