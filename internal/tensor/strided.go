package tensor

import (
	"fmt"
	"unsafe"
)

// StridedImpl is a tensor backed by a strided view over a Storage.
// It uses reference-counted storages so shallow copies are cheap.
type StridedImpl struct {
	implBase
	storage *Storage
}

// NewStrided creates a StridedImpl with zeroed, contiguous storage.
func NewStrided(typeID TypeID, dtype DataType, device Device, sizes Shape) (*StridedImpl, error) {
	s := &StridedImpl{}
	s.init(typeID, dtype, device)
	if err := s.setSizes(sizes); err != nil {
		return nil, err
	}
	s.storage = NewStorage(s.numel * dtype.Size())
	s.strides = s.sizes.ComputeStrides()
	return s, nil
}

// NewStridedFromStorage creates a StridedImpl viewing an existing storage.
// The view takes its own reference to storage. A nil strides slice means
// row-major strides.
func NewStridedFromStorage(typeID TypeID, dtype DataType, device Device, storage *Storage, offset int, sizes Shape, strides []int) (*StridedImpl, error) {
	if storage == nil {
		return nil, fmt.Errorf("nil storage")
	}
	if offset < 0 {
		return nil, fmt.Errorf("negative storage offset %d", offset)
	}
	s := &StridedImpl{}
	s.init(typeID, dtype, device)
	if err := s.setSizes(sizes); err != nil {
		return nil, err
	}
	switch {
	case strides == nil:
		s.strides = s.sizes.ComputeStrides()
	case len(strides) != len(sizes):
		return nil, fmt.Errorf("%w: %d strides for %d dimensions", ErrInvalidShape, len(strides), len(sizes))
	default:
		s.strides = append([]int(nil), strides...)
	}
	if need := (offset + s.extent()) * dtype.Size(); need > storage.Len() {
		return nil, fmt.Errorf("view needs %d bytes but storage holds %d", need, storage.Len())
	}
	s.storageOffset = offset
	s.refreshContiguous()
	storage.addRef()
	s.storage = storage
	return s, nil
}

// Kind returns KindStrided.
func (s *StridedImpl) Kind() Kind {
	return KindStrided
}

// HasStorage returns true while the storage has not been released.
func (s *StridedImpl) HasStorage() bool {
	return s.storage != nil
}

// Strides returns the tensor's memory strides, in elements.
func (s *StridedImpl) Strides() []int {
	return append([]int(nil), s.strides...)
}

// Stride returns the stride of dimension dim.
func (s *StridedImpl) Stride(dim int) int {
	return s.strides[wrapDim(dim, len(s.strides))]
}

// IsContiguous reports whether the tensor is dense in the given format.
func (s *StridedImpl) IsContiguous(format MemoryFormat) bool {
	switch format {
	case MemoryFormatAny, MemoryFormatContiguous:
		return s.isContiguous
	case MemoryFormatChannelsLast:
		return s.isChannelsLastContiguous()
	default:
		panic(fmt.Sprintf("unknown memory format %d", format))
	}
}

// Storage returns the backing storage.
func (s *StridedImpl) Storage() *Storage {
	return s.storage
}

// StorageOffset returns the offset of the first element, in elements.
func (s *StridedImpl) StorageOffset() int {
	return s.storageOffset
}

// ResizeDim changes the rank. New dimensions get size and stride 0.
func (s *StridedImpl) ResizeDim(ndim int) {
	checkMetadataChange("ResizeDim", s.allowMetadataChange)
	if ndim < 0 {
		panic(fmt.Sprintf("ResizeDim: negative rank %d", ndim))
	}
	s.sizes = resizeInts(s.sizes, ndim)
	s.strides = resizeInts(s.strides, ndim)
	s.refreshNumel()
	s.refreshContiguous()
}

// SetSize sets the extent of one dimension.
func (s *StridedImpl) SetSize(dim, size int) {
	checkMetadataChange("SetSize", s.allowMetadataChange)
	if size < 0 {
		panic(fmt.Sprintf("SetSize: negative size %d", size))
	}
	s.sizes[wrapDim(dim, len(s.sizes))] = size
	s.refreshNumel()
	s.refreshContiguous()
}

// SetStride sets the stride of one dimension.
func (s *StridedImpl) SetStride(dim, stride int) {
	checkMetadataChange("SetStride", s.allowMetadataChange)
	s.strides[wrapDim(dim, len(s.strides))] = stride
	s.refreshContiguous()
}

// SetStorageOffset sets the offset of the first element.
func (s *StridedImpl) SetStorageOffset(offset int) {
	checkMetadataChange("SetStorageOffset", s.allowMetadataChange)
	if offset < 0 {
		panic(fmt.Sprintf("SetStorageOffset: negative offset %d", offset))
	}
	s.storageOffset = offset
}

// MaybeZeroDim turns a one-element rank-1 tensor into a rank-0 tensor when
// conditionWhenZeroDim is true. It returns the receiver.
func (s *StridedImpl) MaybeZeroDim(conditionWhenZeroDim bool) Impl {
	if conditionWhenZeroDim && len(s.sizes) == 1 && s.sizes[0] == 1 {
		s.ResizeDim(0)
	}
	return s
}

// ShallowCopyAndDetach returns a new StridedImpl sharing the storage.
func (s *StridedImpl) ShallowCopyAndDetach(vc *VersionCounter, allowMetadataChange bool) Impl {
	impl := &StridedImpl{}
	impl.init(s.typeID, s.dtype, s.device)
	impl.copyTensorMetadata(&s.implBase)
	if s.storage != nil {
		s.storage.addRef()
		impl.storage = s.storage
	}
	impl.SetVersionCounter(vc)
	impl.SetAllowMetadataChange(allowMetadataChange)
	return impl
}

// Release drops a reference and releases the storage with the last one.
func (s *StridedImpl) Release() {
	if s.dropRef() {
		s.ReleaseResources()
	}
}

// ReleaseResources drops the base resources and the storage reference.
func (s *StridedImpl) ReleaseResources() {
	if !s.releaseResources() {
		return
	}
	if s.storage != nil {
		s.storage.release()
		s.storage = nil
	}
}

// String returns a human-readable description.
func (s *StridedImpl) String() string {
	return s.describe(KindStrided)
}

// ByteSize returns the size of the viewed elements in bytes.
func (s *StridedImpl) ByteSize() int {
	return s.numel * s.dtype.Size()
}

// Bytes returns the viewed bytes of a contiguous tensor.
// WARNING: Direct access to underlying memory. Use with caution.
func (s *StridedImpl) Bytes() []byte {
	if !s.isContiguous {
		panic("Bytes requires a contiguous tensor")
	}
	if s.storage == nil {
		panic("Bytes called on a released tensor")
	}
	start := s.storageOffset * s.dtype.Size()
	return s.storage.Bytes()[start : start+s.ByteSize()]
}

// Elements interprets the data of a contiguous tensor as []T.
// Panics if T does not match the tensor's dtype.
func Elements[T DType](s *StridedImpl) []T {
	if want := DataTypeOf[T](); s.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", s.dtype, want))
	}
	data := s.Bytes()
	if len(data) == 0 {
		return []T{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), s.numel)
}

// extent returns one past the largest element index the view touches.
func (s *StridedImpl) extent() int {
	if s.numel == 0 {
		return 0
	}
	last := 0
	for i, size := range s.sizes {
		last += (size - 1) * s.strides[i]
	}
	return last + 1
}

func (s *StridedImpl) refreshContiguous() {
	s.isContiguous = s.computeContiguous()
}

func (s *StridedImpl) computeContiguous() bool {
	if s.numel == 0 {
		return true
	}
	expected := 1
	for d := len(s.sizes) - 1; d >= 0; d-- {
		if s.sizes[d] == 1 {
			continue
		}
		if s.strides[d] != expected {
			return false
		}
		expected *= s.sizes[d]
	}
	return true
}

// isChannelsLastContiguous checks NHWC density: C fastest, then W, H, N.
func (s *StridedImpl) isChannelsLastContiguous() bool {
	if len(s.sizes) != 4 {
		return false
	}
	if s.numel == 0 {
		return true
	}
	expected := 1
	for _, d := range [...]int{1, 3, 2, 0} {
		if s.sizes[d] == 1 {
			continue
		}
		if s.strides[d] != expected {
			return false
		}
		expected *= s.sizes[d]
	}
	return true
}

func resizeInts[S ~[]int](v S, n int) S {
	if n <= len(v) {
		return append(S(nil), v[:n]...)
	}
	out := make(S, n)
	copy(out, v)
	return out
}
