package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/born-ml/tensorimpl/internal/parallel"
	"github.com/born-ml/tensorimpl/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a float32 tensor filled with 1, 2, 3, ...
func newSequence(t *testing.T, shape tensor.Shape) *tensor.StridedImpl {
	t.Helper()
	s, err := tensor.NewStrided(tensor.CPUTypeID, tensor.Float32, tensor.CPU, shape)
	require.NoError(t, err)
	for i := range tensor.Elements[float32](s) {
		tensor.Elements[float32](s)[i] = float32(i + 1)
	}
	return s
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU (packed 8x8)" {
		t.Errorf("Expected name 'CPU (packed 8x8)', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

func TestNewWithConfig(t *testing.T) {
	backend, err := NewWithConfig(PackConfig{BlockRows: 4, BlockCols: 2, Parallel: parallel.Sequential()})
	require.NoError(t, err)
	assert.Equal(t, "CPU (packed 4x2)", backend.Name())
	assert.Equal(t, 4, backend.Config().BlockRows)

	_, err = NewWithConfig(PackConfig{BlockRows: 0, BlockCols: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRoundTrip(t *testing.T) {
	shapes := []tensor.Shape{
		{},
		{5},
		{2, 3},
		{8, 8},
		{17, 9},
		{3, 4, 5},
		{0, 4},
		{4, 0},
	}
	configs := map[string]PackConfig{
		"default":    DefaultPackConfig(),
		"sequential": {BlockRows: 3, BlockCols: 2, Parallel: parallel.Sequential()},
		"parallel":   {BlockRows: 1, BlockCols: 4, Parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}},
	}

	for name, cfg := range configs {
		backend, err := NewWithConfig(cfg)
		require.NoError(t, err)
		for _, shape := range shapes {
			t.Run(fmt.Sprintf("%s/%v", name, shape), func(t *testing.T) {
				src := newSequence(t, shape)

				packed, err := backend.ToOpaque(src)
				require.NoError(t, err)
				assert.Equal(t, tensor.PackedCPUTypeID, packed.TypeID())
				assert.Equal(t, tensor.KindOpaque, packed.Kind())
				assert.False(t, packed.HasStorage())
				assert.Equal(t, src.Shape(), packed.Shape())
				assert.Equal(t, src.NumElements(), packed.NumElements())

				back, err := backend.ToStrided(packed)
				require.NoError(t, err)
				assert.Equal(t, tensor.CPUTypeID, back.TypeID())
				assert.Equal(t, src.Shape(), back.Shape())
				assert.Equal(t, tensor.Elements[float32](src), tensor.Elements[float32](back))
			})
		}
	}
}

func TestRoundTrip_Int64(t *testing.T) {
	backend := New()
	src, err := tensor.NewStrided(tensor.CPUTypeID, tensor.Int64, tensor.CPU, tensor.Shape{10, 3})
	require.NoError(t, err)
	data := tensor.Elements[int64](src)
	for i := range data {
		data[i] = int64(i) * -1000
	}

	packed, err := backend.ToOpaque(src)
	require.NoError(t, err)
	back, err := backend.ToStrided(packed)
	require.NoError(t, err)

	assert.Equal(t, tensor.Int64, back.DType())
	assert.Equal(t, data, tensor.Elements[int64](back))
}

func TestToOpaque_SourceUntouched(t *testing.T) {
	backend := New()
	src := newSequence(t, tensor.Shape{2, 2})

	packed, err := backend.ToOpaque(src)
	require.NoError(t, err)

	// Packing copies; the opaque tensor shares nothing with src.
	tensor.Elements[float32](src)[0] = 100
	back, err := backend.ToStrided(packed)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, tensor.Elements[float32](back))
}

func TestToOpaque_NotContiguous(t *testing.T) {
	backend := New()
	storage := tensor.NewStorage(6 * 4)
	transposed, err := tensor.NewStridedFromStorage(tensor.CPUTypeID, tensor.Float32, tensor.CPU,
		storage, 0, tensor.Shape{3, 2}, []int{1, 3})
	require.NoError(t, err)

	_, err = backend.ToOpaque(transposed)
	assert.ErrorIs(t, err, ErrNotContiguous)
}

func TestToOpaque_Released(t *testing.T) {
	backend := New()
	src := newSequence(t, tensor.Shape{2})
	src.Release()

	_, err := backend.ToOpaque(src)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestToStrided_Released(t *testing.T) {
	backend := New()
	packed, err := backend.ToOpaque(newSequence(t, tensor.Shape{2, 2}))
	require.NoError(t, err)

	packed.ReleaseResources()
	assert.Nil(t, *packed.UnsafeOpaqueHandle())

	_, err = backend.ToStrided(packed)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestToStrided_WrongTypeID(t *testing.T) {
	backend := New()
	buf := newPackedBuffer(1, 1, 8, 8, 4)
	foreign, err := tensor.NewOpaque(tensor.OpaqueTypeID, tensor.Float32, tensor.CPU, buf, tensor.Shape{1})
	require.NoError(t, err)

	_, err = backend.ToStrided(foreign)
	if !errors.Is(err, ErrWrongTypeID) {
		t.Errorf("Expected ErrWrongTypeID, got %v", err)
	}
}

func TestToStrided_ShallowCopy(t *testing.T) {
	backend := New()
	src := newSequence(t, tensor.Shape{3, 3})
	packed, err := backend.ToOpaque(src)
	require.NoError(t, err)

	vc := tensor.NewVersionCounter(7)
	detached, ok := packed.ShallowCopyAndDetach(vc, false).(*tensor.OpaqueImpl[*PackedBuffer])
	require.True(t, ok)
	assert.Same(t, *packed.UnsafeOpaqueHandle(), *detached.UnsafeOpaqueHandle())
	assert.Equal(t, uint32(7), detached.VersionCounter().Current())

	back, err := backend.ToStrided(detached)
	require.NoError(t, err)
	assert.Equal(t, tensor.Elements[float32](src), tensor.Elements[float32](back))
}
