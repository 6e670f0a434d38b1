package tensor

import "sync/atomic"

// VersionCounter tracks in-place modifications of tensor data.
// Tensors that alias the same data share one counter so that autograd can
// detect a mutation through any of them.
type VersionCounter struct {
	version atomic.Uint32
}

// NewVersionCounter creates a counter starting at version.
func NewVersionCounter(version uint32) *VersionCounter {
	vc := &VersionCounter{}
	vc.version.Store(version)
	return vc
}

// Current returns the current version.
func (vc *VersionCounter) Current() uint32 {
	return vc.version.Load()
}

// Bump records one in-place modification.
func (vc *VersionCounter) Bump() {
	vc.version.Add(1)
}

// AutogradMeta holds per-variable autograd bookkeeping.
// It is unique to one logical variable and is never shared by shallow copies.
type AutogradMeta struct {
	RequiresGrad bool
	Grad         Impl
	Name         string
}
