package tensor

import (
	"sync"
	"sync/atomic"
)

// Storage is a reference-counted byte buffer backing strided tensors.
// Shallow copies of a strided tensor share one Storage.
type Storage struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// NewStorage creates a zeroed storage of size bytes with refCount = 1.
func NewStorage(size int) *Storage {
	return NewStorageFromBytes(make([]byte, size))
}

// NewStorageFromBytes wraps data without copying, with refCount = 1.
func NewStorageFromBytes(data []byte) *Storage {
	s := &Storage{data: data}
	s.refCount.Store(1)
	return s
}

// Bytes returns the underlying bytes, or nil once deallocated.
func (s *Storage) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Len returns the storage size in bytes.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// RefCount returns the number of live references.
func (s *Storage) RefCount() int {
	return int(s.refCount.Load())
}

// IsUnique returns true if this storage has only one reference.
func (s *Storage) IsUnique() bool {
	return s.refCount.Load() == 1
}

func (s *Storage) addRef() {
	s.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (s *Storage) release() {
	if s.refCount.Add(-1) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data = nil
	}
}
