// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API of the Born tensor core.
//
// # Overview
//
// Every tensor is backed by an implementation (Impl) of one of two kinds:
//   - StridedImpl: a view over a reference-counted Storage described by
//     sizes, strides and a storage offset
//   - OpaqueImpl[H]: an externally managed handle (a GPU buffer, a packed
//     host layout) with sizes, dtype and device but no strides or storage
//
// Generic code branches on HasStorage() before asking for strides or
// storage. The structural operations of an opaque tensor panic with an
// *UnsupportedOperationError.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensorimpl/backend/cpu"
//	    "github.com/born-ml/tensorimpl/tensor"
//	)
//
//	x, _ := tensor.NewStrided(tensor.CPUTypeID, tensor.Float32, tensor.CPU, tensor.Shape{2, 3})
//	packed, _ := cpu.New().ToOpaque(x)
//	packed.HasStorage() // false
//
// # Shallow copies
//
// ShallowCopyAndDetach creates a new implementation with the same handle
// (or storage) and metadata, a caller-supplied version counter and
// metadata-change flag. Autograd metadata is never copied.
//
// # Handles
//
// A handle type may implement HandleRetainer and HandleReleaser to be
// notified when shallow copies take or drop references to it.
package tensor
