package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A rank-0 shape has one element; any zero extent yields zero.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every extent is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d has extent %d (must be >= 0)", ErrInvalidShape, i, dim)
		}
	}
	return nil
}

// CheckedNumElements validates the shape and returns its element count,
// failing if the product does not fit in an int.
func (s Shape) CheckedNumElements() (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	n := 1
	for _, dim := range s {
		if dim == 0 {
			return 0, nil
		}
	}
	for i, dim := range s {
		if n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: element count overflows at dimension %d of %v", ErrInvalidShape, i, []int(s))
		}
		n *= dim
	}
	return n, nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * max(s[i+1], 1)
	}
	return strides
}

// wrapDim maps a possibly negative dimension index onto [0, rank).
func wrapDim(dim, rank int) int {
	if dim < -rank || dim >= rank {
		panic(fmt.Sprintf("dimension out of range (expected to be in range of [%d, %d], but got %d)", -rank, rank-1, dim))
	}
	if dim < 0 {
		dim += rank
	}
	return dim
}
