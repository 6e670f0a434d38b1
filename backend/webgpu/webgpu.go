// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU producer of opaque tensors.
//
// Uploaded tensors live in GPU storage buffers. The opaque handle is a
// reference-counted *Buffer: shallow copies share it and the GPU memory is
// freed when the last tensor referencing it is released.
//
// The backend is built on windows. Elsewhere IsAvailable reports false and
// New returns ErrUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New(webgpu.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	x, _ := tensor.NewStrided(tensor.CPUTypeID, tensor.Float32, tensor.CPU, tensor.Shape{2, 3})
//	onGPU, _ := gpu.ToOpaque(x)
//	defer onGPU.Release()
//	back, _ := gpu.ToStrided(onGPU)
package webgpu

import (
	"github.com/born-ml/tensorimpl/internal/backend/webgpu"
	"github.com/born-ml/tensorimpl/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = webgpu.Backend

// Buffer is the opaque handle of a WebGPU tensor.
type Buffer = webgpu.Buffer

// Config configures a Backend.
type Config = webgpu.Config

// MemoryStats represents GPU memory usage statistics.
type MemoryStats = webgpu.MemoryStats

// Errors.
var (
	ErrUnavailable   = webgpu.ErrUnavailable
	ErrNotContiguous = webgpu.ErrNotContiguous
	ErrReleased      = webgpu.ErrReleased
	ErrWrongTypeID   = webgpu.ErrWrongTypeID
	ErrForeignBuffer = webgpu.ErrForeignBuffer
)

// Compile-time check that Backend implements tensor.Producer.
var _ tensor.Producer[*Buffer] = (*Backend)(nil)

// New creates a new WebGPU backend.
func New(cfg Config) (*Backend, error) {
	return webgpu.New(cfg)
}

// DefaultConfig returns a high-performance configuration.
func DefaultConfig() Config {
	return webgpu.DefaultConfig()
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() bool {
	return webgpu.IsAvailable()
}
