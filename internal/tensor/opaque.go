package tensor

// HandleReleaser is implemented by opaque handles that hold external
// resources. OpaqueImpl.ReleaseResources calls Release before clearing
// the handle.
type HandleReleaser interface {
	Release()
}

// HandleRetainer is implemented by reference-counted opaque handles.
// ShallowCopyAndDetach calls Retain so that the source and the copy each
// own one reference.
type HandleRetainer interface {
	Retain()
}

// OpaqueImpl is a tensor whose data lives behind a handle of type H owned
// by a backend library, with no strides and no storage.
//
// Metadata queries (shape, dtype, device, HasStorage) work as usual. Stride
// and storage queries, and every metadata mutation, panic with
// *UnsupportedOperationError. Resize is not supported because shallow
// copies would have no way to share the new layout.
type OpaqueImpl[H any] struct {
	implBase
	handle H
}

// NewOpaque creates an OpaqueImpl owning handle. The sizes are copied and
// never change afterwards.
func NewOpaque[H any](typeID TypeID, dtype DataType, device Device, handle H, sizes Shape) (*OpaqueImpl[H], error) {
	o := newOpaque(typeID, dtype, device, handle)
	if err := o.setSizes(sizes); err != nil {
		return nil, err
	}
	return o, nil
}

func newOpaque[H any](typeID TypeID, dtype DataType, device Device, handle H) *OpaqueImpl[H] {
	o := &OpaqueImpl[H]{handle: handle}
	o.init(typeID, dtype, device)
	return o
}

// Kind returns KindOpaque.
func (o *OpaqueImpl[H]) Kind() Kind {
	return KindOpaque
}

// HasStorage always returns false.
func (o *OpaqueImpl[H]) HasStorage() bool {
	return false
}

// Strides panics: opaque tensors have no strides.
func (o *OpaqueImpl[H]) Strides() []int {
	unsupported("Strides", "opaque tensors do not have strides")
	return nil
}

// Stride panics: opaque tensors have no strides.
func (o *OpaqueImpl[H]) Stride(int) int {
	unsupported("Stride", "opaque tensors do not have strides")
	return 0
}

// IsContiguous panics: contiguity is undefined without strides.
func (o *OpaqueImpl[H]) IsContiguous(MemoryFormat) bool {
	unsupported("IsContiguous", "opaque tensors do not have is_contiguous")
	return false
}

// Storage panics: opaque tensors have no storage.
func (o *OpaqueImpl[H]) Storage() *Storage {
	unsupported("Storage", "opaque tensors do not have storage")
	return nil
}

// StorageOffset panics: opaque tensors have no storage.
func (o *OpaqueImpl[H]) StorageOffset() int {
	unsupported("StorageOffset", "opaque tensors do not have storage")
	return 0
}

// ResizeDim panics.
func (o *OpaqueImpl[H]) ResizeDim(int) {
	unsupported("ResizeDim", "opaque tensors do not have resize_dim")
}

// SetSize panics.
func (o *OpaqueImpl[H]) SetSize(int, int) {
	unsupported("SetSize", "opaque tensors do not have set_size")
}

// SetStride panics.
func (o *OpaqueImpl[H]) SetStride(int, int) {
	unsupported("SetStride", "opaque tensors do not have set_stride")
}

// SetStorageOffset panics.
func (o *OpaqueImpl[H]) SetStorageOffset(int) {
	unsupported("SetStorageOffset", "opaque tensors do not have set_storage_offset")
}

// MaybeZeroDim panics.
func (o *OpaqueImpl[H]) MaybeZeroDim(bool) Impl {
	unsupported("MaybeZeroDim", "opaque tensors do not support maybe_zero_dim")
	return nil
}

// ShallowCopyAndDetach returns a new OpaqueImpl holding a copy of the
// handle and the generic metadata. Strides, storage offset and the
// contiguity flag carry no meaning here and are copied only for
// completeness.
func (o *OpaqueImpl[H]) ShallowCopyAndDetach(vc *VersionCounter, allowMetadataChange bool) Impl {
	if r, ok := any(o.handle).(HandleRetainer); ok {
		r.Retain()
	}
	impl := newOpaque(o.typeID, o.dtype, o.device, o.handle)
	impl.copyTensorMetadata(&o.implBase)
	impl.SetVersionCounter(vc)
	impl.SetAllowMetadataChange(allowMetadataChange)
	return impl
}

// Release drops a reference and releases the handle with the last one.
func (o *OpaqueImpl[H]) Release() {
	if o.dropRef() {
		o.ReleaseResources()
	}
}

// ReleaseResources releases the base resources, then resets the handle to
// its zero value so that nothing keeps the external resource reachable.
func (o *OpaqueImpl[H]) ReleaseResources() {
	if !o.releaseResources() {
		return
	}
	if r, ok := any(o.handle).(HandleReleaser); ok {
		r.Release()
	}
	var zero H
	o.handle = zero
}

// UnsafeOpaqueHandle returns a pointer to the owned handle.
// Callers get direct access to mutable state and must synchronize
// themselves.
func (o *OpaqueImpl[H]) UnsafeOpaqueHandle() *H {
	return &o.handle
}

// String returns a human-readable description.
func (o *OpaqueImpl[H]) String() string {
	return o.describe(KindOpaque)
}
