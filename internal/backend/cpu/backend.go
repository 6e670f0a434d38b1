// Package cpu implements the CPU producer of opaque tensors: a tile-packed
// host layout that generic tensor code cannot index with strides.
package cpu

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensorimpl/internal/parallel"
	"github.com/born-ml/tensorimpl/internal/tensor"
)

// Common errors.
var (
	ErrNotContiguous = errors.New("source tensor is not contiguous")
	ErrReleased      = errors.New("opaque tensor has been released")
	ErrWrongTypeID   = errors.New("opaque tensor was not produced by the CPU packer")
	ErrInvalidConfig = errors.New("invalid pack config")
)

// PackConfig controls the tile layout.
type PackConfig struct {
	BlockRows int             // Rows per tile.
	BlockCols int             // Columns per tile.
	Parallel  parallel.Config // Fan-out over tile rows.
}

// DefaultPackConfig returns 8x8 tiles packed in parallel.
func DefaultPackConfig() PackConfig {
	return PackConfig{
		BlockRows: 8,
		BlockCols: 8,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Validate checks the tile dimensions.
func (c PackConfig) Validate() error {
	if c.BlockRows <= 0 || c.BlockCols <= 0 {
		return fmt.Errorf("%w: block %dx%d (must be > 0)", ErrInvalidConfig, c.BlockRows, c.BlockCols)
	}
	return nil
}

// CPUBackend packs strided host tensors into opaque tiled tensors.
type CPUBackend struct {
	device tensor.Device
	config PackConfig
}

// Compile-time check that CPUBackend is a tensor.Producer.
var _ tensor.Producer[*PackedBuffer] = (*CPUBackend)(nil)

// New creates a CPU backend with DefaultPackConfig.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		config: DefaultPackConfig(),
	}
}

// NewWithConfig creates a CPU backend with a custom tile layout.
func NewWithConfig(cfg PackConfig) (*CPUBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CPUBackend{device: tensor.CPU, config: cfg}, nil
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return fmt.Sprintf("CPU (packed %dx%d)", cpu.config.BlockRows, cpu.config.BlockCols)
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Config returns the tile layout in use.
func (cpu *CPUBackend) Config() PackConfig {
	return cpu.config
}

// ToOpaque packs src into tiles. The result has type id PackedCPU and
// the same dtype and shape as src.
func (cpu *CPUBackend) ToOpaque(src *tensor.StridedImpl) (*tensor.OpaqueImpl[*PackedBuffer], error) {
	if !src.HasStorage() {
		return nil, fmt.Errorf("pack: %w", ErrReleased)
	}
	if !src.IsContiguous(tensor.MemoryFormatContiguous) {
		return nil, fmt.Errorf("pack: %w: shape %v strides %v", ErrNotContiguous, src.Shape(), src.Strides())
	}

	rows, cols := matrixView(src.Shape())
	buf := newPackedBuffer(rows, cols, cpu.config.BlockRows, cpu.config.BlockCols, src.DType().Size())
	buf.pack(src.Bytes(), cpu.config.Parallel)

	return tensor.NewOpaque(tensor.PackedCPUTypeID, src.DType(), cpu.device, buf, src.Shape())
}

// ToStrided unpacks o into a new contiguous strided tensor.
func (cpu *CPUBackend) ToStrided(o *tensor.OpaqueImpl[*PackedBuffer]) (*tensor.StridedImpl, error) {
	if o.TypeID() != tensor.PackedCPUTypeID {
		return nil, fmt.Errorf("unpack: %w: type id %s", ErrWrongTypeID, o.TypeID())
	}
	buf := *o.UnsafeOpaqueHandle()
	if buf == nil {
		return nil, fmt.Errorf("unpack: %w", ErrReleased)
	}
	if buf.rows*buf.cols != o.NumElements() || buf.elemSize != o.DType().Size() {
		return nil, fmt.Errorf("unpack: packed buffer %dx%d of %d-byte elements does not match %s",
			buf.rows, buf.cols, buf.elemSize, o)
	}

	dst, err := tensor.NewStrided(tensor.CPUTypeID, o.DType(), cpu.device, o.Shape())
	if err != nil {
		return nil, fmt.Errorf("unpack: failed to create result tensor: %w", err)
	}
	buf.unpack(dst.Bytes(), cpu.config.Parallel)
	return dst, nil
}

// matrixView flattens leading dimensions into rows; the last dimension
// is the column count.
func matrixView(shape tensor.Shape) (rows, cols int) {
	if len(shape) == 0 {
		return 1, 1
	}
	cols = shape[len(shape)-1]
	rows = 1
	for _, d := range shape[:len(shape)-1] {
		rows *= d
	}
	return rows, cols
}
