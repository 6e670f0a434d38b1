package tensor

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies which tensor implementation variant backs a tensor.
type Kind int

// Tensor implementation variants.
const (
	KindStrided Kind = iota // dense or strided view over a Storage
	KindOpaque              // externally managed handle, no strides or storage
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindStrided:
		return "strided"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Impl is the tensor implementation surface seen by generic tensor code.
//
// The set of implementations is closed: only *StridedImpl and *OpaqueImpl
// satisfy Impl, and Kind() tells them apart. Opaque tensors answer every
// metadata query but panic with *UnsupportedOperationError on stride and
// storage operations; use HasStorage() to check before invoking them.
type Impl interface {
	// Kind reports the implementation variant.
	Kind() Kind

	// Metadata queries, supported by every variant.
	TypeID() TypeID
	DType() DataType
	Device() Device
	Shape() Shape
	Dim() int
	Size(dim int) int
	NumElements() int
	HasStorage() bool
	IsWrappedNumber() bool
	SetWrappedNumber(wrapped bool)
	Reserved() bool
	SetReserved(reserved bool)
	VersionCounter() *VersionCounter
	SetVersionCounter(vc *VersionCounter)
	AllowMetadataChange() bool
	SetAllowMetadataChange(allow bool)
	AutogradMeta() *AutogradMeta
	SetAutogradMeta(meta *AutogradMeta)
	RefCount() int
	String() string

	// Structural queries.
	Strides() []int
	Stride(dim int) int
	IsContiguous(format MemoryFormat) bool
	Storage() *Storage
	StorageOffset() int

	// Metadata mutations.
	ResizeDim(ndim int)
	SetSize(dim, size int)
	SetStride(dim, stride int)
	SetStorageOffset(offset int)
	MaybeZeroDim(conditionWhenZeroDim bool) Impl

	// ShallowCopyAndDetach returns a new implementation with the same
	// metadata and data reference. The version counter and the
	// metadata-change flag are taken from the arguments, and autograd
	// metadata is never copied.
	ShallowCopyAndDetach(vc *VersionCounter, allowMetadataChange bool) Impl

	// Retain adds a reference. Release drops one and calls
	// ReleaseResources when the last reference is gone.
	Retain()
	Release()
	ReleaseResources()

	implementation()
}

// implBase holds the metadata shared by every tensor implementation.
// Fields without meaning for a variant are still carried so that shallow
// copies stay faithful.
type implBase struct {
	typeID TypeID
	dtype  DataType
	device Device

	sizes         Shape
	numel         int
	strides       []int
	storageOffset int

	isContiguous        bool
	isWrappedNumber     bool
	reserved            bool
	allowMetadataChange bool

	versionCounter *VersionCounter
	autogradMeta   *AutogradMeta

	refCount atomic.Int32
	released bool
}

func (b *implBase) init(typeID TypeID, dtype DataType, device Device) {
	b.typeID = typeID
	b.dtype = dtype
	b.device = device
	b.numel = 1
	b.isContiguous = true
	b.allowMetadataChange = true
	b.versionCounter = NewVersionCounter(0)
	b.refCount.Store(1)
}

// setSizes copies sizes and recomputes the cached element count.
func (b *implBase) setSizes(sizes Shape) error {
	numel, err := sizes.CheckedNumElements()
	if err != nil {
		return err
	}
	b.sizes = sizes.Clone()
	b.numel = numel
	return nil
}

func (b *implBase) refreshNumel() {
	b.numel = b.sizes.NumElements()
}

// copyTensorMetadata copies the generic fields a shallow copy must carry.
// Version counter, metadata-change flag and autograd meta are left alone.
func (b *implBase) copyTensorMetadata(src *implBase) {
	b.sizes = src.sizes.Clone()
	b.numel = src.numel
	if src.strides != nil {
		b.strides = append([]int(nil), src.strides...)
	} else {
		b.strides = nil
	}
	b.storageOffset = src.storageOffset
	b.isContiguous = src.isContiguous
	b.isWrappedNumber = src.isWrappedNumber
	b.reserved = src.reserved
}

// releaseResources drops base-owned state. Reports false if already released.
func (b *implBase) releaseResources() bool {
	if b.released {
		return false
	}
	b.released = true
	b.autogradMeta = nil
	return true
}

// dropRef decrements the reference count, reporting whether it hit zero.
func (b *implBase) dropRef() bool {
	return b.refCount.Add(-1) == 0
}

// TypeID returns the identifier of the producing implementation.
func (b *implBase) TypeID() TypeID {
	return b.typeID
}

// DType returns the tensor's data type.
func (b *implBase) DType() DataType {
	return b.dtype
}

// Device returns the tensor's compute device.
func (b *implBase) Device() Device {
	return b.device
}

// Shape returns a copy of the tensor's sizes.
func (b *implBase) Shape() Shape {
	return b.sizes.Clone()
}

// Dim returns the number of dimensions.
func (b *implBase) Dim() int {
	return len(b.sizes)
}

// Size returns the extent of dimension dim. Negative dims count from the end.
func (b *implBase) Size(dim int) int {
	return b.sizes[wrapDim(dim, len(b.sizes))]
}

// NumElements returns the cached total number of elements.
func (b *implBase) NumElements() int {
	return b.numel
}

// IsWrappedNumber reports whether the tensor wraps a Go scalar.
func (b *implBase) IsWrappedNumber() bool {
	return b.isWrappedNumber
}

// SetWrappedNumber marks a rank-0 tensor as a wrapped scalar.
func (b *implBase) SetWrappedNumber(wrapped bool) {
	if len(b.sizes) != 0 {
		panic(fmt.Sprintf("SetWrappedNumber requires a rank-0 tensor, got rank %d", len(b.sizes)))
	}
	b.isWrappedNumber = wrapped
}

// Reserved reports the reserved flag.
func (b *implBase) Reserved() bool {
	return b.reserved
}

// SetReserved sets the reserved flag.
func (b *implBase) SetReserved(reserved bool) {
	b.reserved = reserved
}

// VersionCounter returns the version counter shared with aliasing tensors.
func (b *implBase) VersionCounter() *VersionCounter {
	return b.versionCounter
}

// SetVersionCounter replaces the version counter.
func (b *implBase) SetVersionCounter(vc *VersionCounter) {
	b.versionCounter = vc
}

// AllowMetadataChange reports whether sizes, strides and storage offset
// may be changed on this tensor.
func (b *implBase) AllowMetadataChange() bool {
	return b.allowMetadataChange
}

// SetAllowMetadataChange sets the metadata-change flag.
func (b *implBase) SetAllowMetadataChange(allow bool) {
	b.allowMetadataChange = allow
}

// AutogradMeta returns the autograd metadata, or nil.
func (b *implBase) AutogradMeta() *AutogradMeta {
	return b.autogradMeta
}

// SetAutogradMeta attaches autograd metadata.
func (b *implBase) SetAutogradMeta(meta *AutogradMeta) {
	b.autogradMeta = meta
}

// RefCount returns the number of live references to the implementation.
func (b *implBase) RefCount() int {
	return int(b.refCount.Load())
}

// Retain adds a reference.
func (b *implBase) Retain() {
	b.refCount.Add(1)
}

func (b *implBase) describe(kind Kind) string {
	return fmt.Sprintf("%s tensor[%s]%v on %s (%s)", kind, b.dtype, []int(b.sizes), b.device, b.typeID)
}

func (*implBase) implementation() {}
