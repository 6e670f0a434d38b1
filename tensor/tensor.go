// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensorimpl/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
type DType = tensor.DType

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Bool     DataType = tensor.Bool
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// TypeID identifies the implementation that produced a tensor.
type TypeID = tensor.TypeID

// Type id constants.
const (
	UndefinedTypeID TypeID = tensor.UndefinedTypeID
	CPUTypeID       TypeID = tensor.CPUTypeID
	PackedCPUTypeID TypeID = tensor.PackedCPUTypeID
	WebGPUTypeID    TypeID = tensor.WebGPUTypeID
	OpaqueTypeID    TypeID = tensor.OpaqueTypeID
)

// Kind identifies the implementation variant.
type Kind = tensor.Kind

// Kind constants.
const (
	KindStrided Kind = tensor.KindStrided
	KindOpaque  Kind = tensor.KindOpaque
)

// MemoryFormat selects the layout checked by IsContiguous.
type MemoryFormat = tensor.MemoryFormat

// Memory format constants.
const (
	MemoryFormatAny          MemoryFormat = tensor.MemoryFormatAny
	MemoryFormatContiguous   MemoryFormat = tensor.MemoryFormatContiguous
	MemoryFormatChannelsLast MemoryFormat = tensor.MemoryFormatChannelsLast
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Impl is a tensor implementation, strided or opaque.
type Impl = tensor.Impl

// StridedImpl is a tensor implementation over a strided Storage.
type StridedImpl = tensor.StridedImpl

// OpaqueImpl is a tensor implementation over an opaque handle of type H.
type OpaqueImpl[H any] = tensor.OpaqueImpl[H]

// Storage is a reference-counted byte buffer shared by strided views.
type Storage = tensor.Storage

// VersionCounter tracks in-place modifications shared by aliasing tensors.
type VersionCounter = tensor.VersionCounter

// AutogradMeta holds per-variable autograd bookkeeping.
type AutogradMeta = tensor.AutogradMeta

// HandleRetainer is implemented by handles that count references.
type HandleRetainer = tensor.HandleRetainer

// HandleReleaser is implemented by handles that own external resources.
type HandleReleaser = tensor.HandleReleaser

// Producer converts between strided tensors and opaque tensors of handle H.
type Producer[H any] = tensor.Producer[H]

// UnsupportedOperationError is the panic value of structural operations
// on opaque tensors.
type UnsupportedOperationError = tensor.UnsupportedOperationError

// Errors.
var (
	ErrUnsupportedOperation     = tensor.ErrUnsupportedOperation
	ErrMetadataChangeNotAllowed = tensor.ErrMetadataChangeNotAllowed
	ErrInvalidShape             = tensor.ErrInvalidShape
)

// NewStrided creates a zeroed, contiguous strided tensor.
func NewStrided(typeID TypeID, dtype DataType, device Device, sizes Shape) (*StridedImpl, error) {
	return tensor.NewStrided(typeID, dtype, device, sizes)
}

// NewStridedFromStorage creates a strided view over an existing storage.
func NewStridedFromStorage(typeID TypeID, dtype DataType, device Device, storage *Storage, offset int, sizes Shape, strides []int) (*StridedImpl, error) {
	return tensor.NewStridedFromStorage(typeID, dtype, device, storage, offset, sizes, strides)
}

// NewOpaque creates an opaque tensor that owns handle.
//
// Example:
//
//	t, err := tensor.NewOpaque(tensor.OpaqueTypeID, tensor.Float32, tensor.CPU, myHandle, tensor.Shape{2, 3})
//	t.HasStorage()       // false
//	t.NumElements()      // 6
//	t.Stride(0)          // panics with *UnsupportedOperationError
func NewOpaque[H any](typeID TypeID, dtype DataType, device Device, handle H, sizes Shape) (*OpaqueImpl[H], error) {
	return tensor.NewOpaque(typeID, dtype, device, handle, sizes)
}

// NewStorage creates a zeroed storage of size bytes.
func NewStorage(size int) *Storage {
	return tensor.NewStorage(size)
}

// NewStorageFromBytes wraps data without copying.
func NewStorageFromBytes(data []byte) *Storage {
	return tensor.NewStorageFromBytes(data)
}

// NewVersionCounter creates a version counter starting at version.
func NewVersionCounter(version uint32) *VersionCounter {
	return tensor.NewVersionCounter(version)
}

// Elements interprets a contiguous strided tensor as []T.
func Elements[T DType](s *StridedImpl) []T {
	return tensor.Elements[T](s)
}

// DataTypeOf returns the DataType of T.
func DataTypeOf[T DType]() DataType {
	return tensor.DataTypeOf[T]()
}

// AsUnsupported reports whether a recovered panic value is an
// *UnsupportedOperationError.
func AsUnsupported(recovered any) (*UnsupportedOperationError, bool) {
	return tensor.AsUnsupported(recovered)
}
