package tensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockHandle is a value handle, like a descriptor returned by a layout engine.
type blockHandle struct {
	ptr    uintptr
	layout string
}

// countedHandle records Retain/Release calls, like a shared accelerator buffer.
type countedHandle struct {
	retains  int
	releases int
}

func (h *countedHandle) Retain()  { h.retains++ }
func (h *countedHandle) Release() { h.releases++ }

func newBlockTensor(t *testing.T, sizes Shape) *OpaqueImpl[blockHandle] {
	t.Helper()
	o, err := NewOpaque(OpaqueTypeID, Float32, CPU, blockHandle{ptr: 0xbeef, layout: "nChw8c"}, sizes)
	require.NoError(t, err)
	return o
}

// recoverUnsupported runs fn and returns the UnsupportedOperationError it panicked with.
func recoverUnsupported(t *testing.T, fn func()) (uerr *UnsupportedOperationError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		uerr, ok = AsUnsupported(r)
		require.True(t, ok, "panic value %v is not an UnsupportedOperationError", r)
	}()
	fn()
	return nil
}

func TestNewOpaque(t *testing.T) {
	o := newBlockTensor(t, Shape{2, 3})

	assert.Equal(t, KindOpaque, o.Kind())
	assert.Equal(t, OpaqueTypeID, o.TypeID())
	assert.Equal(t, Float32, o.DType())
	assert.Equal(t, CPU, o.Device())
	assert.Equal(t, Shape{2, 3}, o.Shape())
	assert.Equal(t, 2, o.Dim())
	assert.Equal(t, 3, o.Size(1))
	assert.Equal(t, 3, o.Size(-1))
	assert.Equal(t, 6, o.NumElements())
	assert.False(t, o.HasStorage())
	assert.Equal(t, 1, o.RefCount())
	assert.True(t, o.AllowMetadataChange())
	assert.Equal(t, uint32(0), o.VersionCounter().Current())
	assert.Equal(t, blockHandle{ptr: 0xbeef, layout: "nChw8c"}, *o.UnsafeOpaqueHandle())
}

func TestNewOpaque_NumElements(t *testing.T) {
	tests := []struct {
		name  string
		sizes Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{2, 3}, 6},
		{"rank3", Shape{2, 3, 4}, 24},
		{"zero extent", Shape{0, 4}, 0},
		{"zero inner extent", Shape{3, 0, 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newBlockTensor(t, tt.sizes)
			assert.Equal(t, tt.want, o.NumElements())
			assert.False(t, o.HasStorage())
		})
	}
}

func TestNewOpaque_CopiesSizes(t *testing.T) {
	sizes := Shape{4, 5}
	o := newBlockTensor(t, sizes)
	sizes[0] = 99

	assert.Equal(t, Shape{4, 5}, o.Shape())

	// Shape() hands out a copy as well.
	got := o.Shape()
	got[1] = 99
	assert.Equal(t, Shape{4, 5}, o.Shape())
}

func TestNewOpaque_InvalidSizes(t *testing.T) {
	_, err := NewOpaque(OpaqueTypeID, Float32, CPU, blockHandle{}, Shape{2, -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewOpaque(OpaqueTypeID, Float32, CPU, blockHandle{}, Shape{math.MaxInt, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestOpaque_StructuralQueriesPanic(t *testing.T) {
	o := newBlockTensor(t, Shape{2, 3})

	tests := []struct {
		op  string
		msg string
		fn  func()
	}{
		{"Strides", "opaque tensors do not have strides", func() { o.Strides() }},
		{"Stride", "opaque tensors do not have strides", func() { o.Stride(0) }},
		{"Stride", "opaque tensors do not have strides", func() { o.Stride(-1) }},
		{"Stride", "opaque tensors do not have strides", func() { o.Stride(17) }},
		{"IsContiguous", "opaque tensors do not have is_contiguous", func() { o.IsContiguous(MemoryFormatAny) }},
		{"IsContiguous", "opaque tensors do not have is_contiguous", func() { o.IsContiguous(MemoryFormatContiguous) }},
		{"IsContiguous", "opaque tensors do not have is_contiguous", func() { o.IsContiguous(MemoryFormatChannelsLast) }},
		{"Storage", "opaque tensors do not have storage", func() { o.Storage() }},
		{"StorageOffset", "opaque tensors do not have storage", func() { o.StorageOffset() }},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			assert.PanicsWithError(t, tt.msg, tt.fn)

			uerr := recoverUnsupported(t, tt.fn)
			assert.Equal(t, tt.op, uerr.Op)
			assert.True(t, errors.Is(uerr, ErrUnsupportedOperation))
		})
	}
}

func TestOpaque_MutationsPanicAndLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		op  string
		msg string
		fn  func(o *OpaqueImpl[blockHandle])
	}{
		{"ResizeDim", "opaque tensors do not have resize_dim", func(o *OpaqueImpl[blockHandle]) { o.ResizeDim(3) }},
		{"ResizeDim", "opaque tensors do not have resize_dim", func(o *OpaqueImpl[blockHandle]) { o.ResizeDim(0) }},
		{"SetSize", "opaque tensors do not have set_size", func(o *OpaqueImpl[blockHandle]) { o.SetSize(0, 10) }},
		{"SetStride", "opaque tensors do not have set_stride", func(o *OpaqueImpl[blockHandle]) { o.SetStride(1, 2) }},
		{"SetStorageOffset", "opaque tensors do not have set_storage_offset", func(o *OpaqueImpl[blockHandle]) { o.SetStorageOffset(4) }},
		{"MaybeZeroDim", "opaque tensors do not support maybe_zero_dim", func(o *OpaqueImpl[blockHandle]) { o.MaybeZeroDim(true) }},
		{"MaybeZeroDim", "opaque tensors do not support maybe_zero_dim", func(o *OpaqueImpl[blockHandle]) { o.MaybeZeroDim(false) }},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			o := newBlockTensor(t, Shape{2, 3})
			before := *o.UnsafeOpaqueHandle()

			assert.PanicsWithError(t, tt.msg, func() { tt.fn(o) })

			uerr := recoverUnsupported(t, func() { tt.fn(o) })
			assert.Equal(t, tt.op, uerr.Op)
			assert.Equal(t, Shape{2, 3}, o.Shape())
			assert.Equal(t, 6, o.NumElements())
			assert.Equal(t, before, *o.UnsafeOpaqueHandle())
		})
	}
}

func TestOpaque_StrideMessageReferencesStrides(t *testing.T) {
	o := newBlockTensor(t, Shape{2, 3})
	uerr := recoverUnsupported(t, func() { o.Stride(0) })
	assert.Contains(t, uerr.Error(), "strides")
}

func TestOpaque_ShallowCopyAndDetach(t *testing.T) {
	a := newBlockTensor(t, Shape{2, 3})
	for i := 0; i < 5; i++ {
		a.VersionCounter().Bump()
	}
	originalVC := a.VersionCounter()
	meta := &AutogradMeta{RequiresGrad: true, Name: "weight"}
	a.SetAutogradMeta(meta)

	vc := NewVersionCounter(42)
	copied := a.ShallowCopyAndDetach(vc, false)

	b, ok := copied.(*OpaqueImpl[blockHandle])
	require.True(t, ok, "copy has type %T", copied)
	assert.NotSame(t, a, b)
	assert.Equal(t, KindOpaque, b.Kind())
	assert.Equal(t, a.Shape(), b.Shape())
	assert.Equal(t, a.NumElements(), b.NumElements())
	assert.Equal(t, a.DType(), b.DType())
	assert.Equal(t, a.Device(), b.Device())
	assert.Equal(t, a.TypeID(), b.TypeID())
	assert.Equal(t, *a.UnsafeOpaqueHandle(), *b.UnsafeOpaqueHandle())
	assert.False(t, b.HasStorage())

	assert.Same(t, vc, b.VersionCounter())
	assert.Equal(t, uint32(42), b.VersionCounter().Current())
	assert.False(t, b.AllowMetadataChange())
	assert.Nil(t, b.AutogradMeta(), "autograd meta must not be copied")
	assert.Equal(t, 1, b.RefCount())

	// Source untouched.
	assert.Same(t, originalVC, a.VersionCounter())
	assert.Equal(t, uint32(5), a.VersionCounter().Current())
	assert.True(t, a.AllowMetadataChange())
	assert.Same(t, meta, a.AutogradMeta())
	assert.Equal(t, Shape{2, 3}, a.Shape())

	// The copy owns its own handle value.
	b.UnsafeOpaqueHandle().layout = "changed"
	assert.Equal(t, "nChw8c", a.UnsafeOpaqueHandle().layout)
}

func TestOpaque_ShallowCopyKeepsGenericFlags(t *testing.T) {
	a := newBlockTensor(t, Shape{})
	a.SetWrappedNumber(true)
	a.SetReserved(true)

	b := a.ShallowCopyAndDetach(NewVersionCounter(0), true)

	assert.True(t, b.IsWrappedNumber())
	assert.True(t, b.Reserved())
	assert.True(t, b.AllowMetadataChange())
	assert.Equal(t, 1, b.NumElements())
}

func TestOpaque_ShallowCopyOfCopyUsesNewCounter(t *testing.T) {
	a := newBlockTensor(t, Shape{3})
	b := a.ShallowCopyAndDetach(NewVersionCounter(7), true)
	c := b.ShallowCopyAndDetach(NewVersionCounter(9), false)

	assert.Equal(t, uint32(0), a.VersionCounter().Current())
	assert.Equal(t, uint32(7), b.VersionCounter().Current())
	assert.Equal(t, uint32(9), c.VersionCounter().Current())
	assert.Equal(t, Shape{3}, c.Shape())
}

func TestOpaque_ShallowCopyRetainsHandle(t *testing.T) {
	h := &countedHandle{}
	a, err := NewOpaque(WebGPUTypeID, Float32, WebGPU, h, Shape{8})
	require.NoError(t, err)

	b := a.ShallowCopyAndDetach(NewVersionCounter(0), true)
	assert.Equal(t, 1, h.retains)

	b.Release()
	assert.Equal(t, 1, h.releases)
	assert.Same(t, h, *a.UnsafeOpaqueHandle(), "source keeps its handle")

	a.Release()
	assert.Equal(t, 2, h.releases)
	assert.Nil(t, *a.UnsafeOpaqueHandle())
}

func TestOpaque_ReleaseResources(t *testing.T) {
	o := newBlockTensor(t, Shape{2, 3})
	o.SetAutogradMeta(&AutogradMeta{RequiresGrad: true})

	o.ReleaseResources()

	assert.Equal(t, blockHandle{}, *o.UnsafeOpaqueHandle())
	assert.Nil(t, o.AutogradMeta())
	// Metadata queries still work on a released tensor.
	assert.Equal(t, Shape{2, 3}, o.Shape())
	assert.False(t, o.HasStorage())
}

func TestOpaque_ReleaseResourcesReleasesHandleOnce(t *testing.T) {
	h := &countedHandle{}
	o, err := NewOpaque(OpaqueTypeID, Float32, CPU, h, Shape{1})
	require.NoError(t, err)

	o.ReleaseResources()
	o.ReleaseResources()

	assert.Equal(t, 1, h.releases)
	assert.Nil(t, *o.UnsafeOpaqueHandle())
}

func TestOpaque_ReferenceCounting(t *testing.T) {
	h := &countedHandle{}
	o, err := NewOpaque(OpaqueTypeID, Float32, CPU, h, Shape{4})
	require.NoError(t, err)

	o.Retain()
	assert.Equal(t, 2, o.RefCount())

	o.Release()
	assert.Equal(t, 0, h.releases)
	assert.Same(t, h, *o.UnsafeOpaqueHandle())

	o.Release()
	assert.Equal(t, 1, h.releases)
	assert.Nil(t, *o.UnsafeOpaqueHandle())
}

func TestOpaque_UnsafeOpaqueHandleAliases(t *testing.T) {
	o := newBlockTensor(t, Shape{2})

	h := o.UnsafeOpaqueHandle()
	h.ptr = 0xcafe

	assert.Equal(t, uintptr(0xcafe), o.UnsafeOpaqueHandle().ptr)
	assert.Same(t, h, o.UnsafeOpaqueHandle())
}

func TestOpaque_SetWrappedNumberRequiresScalar(t *testing.T) {
	o := newBlockTensor(t, Shape{2})
	assert.Panics(t, func() { o.SetWrappedNumber(true) })
}

func TestOpaque_String(t *testing.T) {
	o := newBlockTensor(t, Shape{2, 3})
	assert.Equal(t, "opaque tensor[float32][2 3] on CPU (Opaque)", o.String())
}

func TestAsUnsupported(t *testing.T) {
	_, ok := AsUnsupported("plain string panic")
	assert.False(t, ok)

	_, ok = AsUnsupported(nil)
	assert.False(t, ok)

	_, ok = AsUnsupported(errors.New("other"))
	assert.False(t, ok)

	uerr, ok := AsUnsupported(&UnsupportedOperationError{Op: "Stride", Msg: "opaque tensors do not have strides"})
	require.True(t, ok)
	assert.Equal(t, "Stride", uerr.Op)
}
