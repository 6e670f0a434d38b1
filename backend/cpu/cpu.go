// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/tensorimpl/internal/backend/cpu"
	"github.com/born-ml/tensorimpl/tensor"
)

// Backend represents the CPU packing backend.
type Backend = internalcpu.CPUBackend

// PackedBuffer is the opaque handle of a packed tensor.
type PackedBuffer = internalcpu.PackedBuffer

// PackConfig controls the tile layout.
type PackConfig = internalcpu.PackConfig

// Errors.
var (
	ErrNotContiguous = internalcpu.ErrNotContiguous
	ErrReleased      = internalcpu.ErrReleased
	ErrWrongTypeID   = internalcpu.ErrWrongTypeID
	ErrInvalidConfig = internalcpu.ErrInvalidConfig
)

// Compile-time check that Backend implements tensor.Producer.
var _ tensor.Producer[*PackedBuffer] = (*Backend)(nil)

// New creates a new CPU backend with 8x8 tiles.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a new CPU backend with a custom tile layout.
func NewWithConfig(cfg PackConfig) (*Backend, error) {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultPackConfig returns 8x8 tiles packed in parallel.
func DefaultPackConfig() PackConfig {
	return internalcpu.DefaultPackConfig()
}
