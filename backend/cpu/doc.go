// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU producer of opaque tensors.
//
// # Overview
//
// The backend packs a contiguous strided tensor into zero-padded tiles
// (8x8 by default). The result is an opaque tensor of type id PackedCPU:
// it keeps shape, dtype and device, but it has no strides and no storage,
// so generic strided code cannot misread the tiled bytes.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensorimpl/backend/cpu"
//	    "github.com/born-ml/tensorimpl/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := tensor.NewStrided(tensor.CPUTypeID, tensor.Float32, tensor.CPU, tensor.Shape{17, 9})
//	    packed, _ := backend.ToOpaque(x)
//	    defer packed.Release()
//
//	    y, _ := backend.ToStrided(packed) // same values as x
//	}
package cpu
