//go:build windows

package webgpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// sizeClass buckets staging buffers by size.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4KB
	mediumClass                  // 4KB-1MB
	largeClass                   // >= 1MB
	numClasses
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPooled       = 16 // per class
)

func classOf(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}

type stagingBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// stagingPool reuses MapRead staging buffers across downloads.
type stagingPool struct {
	device *wgpu.Device
	label  string

	mu     sync.Mutex
	free   [numClasses][]stagingBuffer
	hits   uint64
	misses uint64
}

func newStagingPool(device *wgpu.Device, label string) *stagingPool {
	return &stagingPool{device: device, label: label}
}

// acquire returns a staging buffer of at least size bytes.
func (p *stagingPool) acquire(size uint64) (stagingBuffer, error) {
	p.mu.Lock()
	class := classOf(size)
	for i, sb := range p.free[class] {
		if sb.size >= size {
			p.free[class] = append(p.free[class][:i], p.free[class][i+1:]...)
			p.hits++
			p.mu.Unlock()
			return sb, nil
		}
	}
	p.misses++
	p.mu.Unlock()

	buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.label + ":staging",
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if err != nil {
		return stagingBuffer{}, err
	}
	return stagingBuffer{buffer: buf, size: size}, nil
}

// put returns an unmapped staging buffer to the pool, or frees it when the
// class is full.
func (p *stagingPool) put(sb stagingBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classOf(sb.size)
	if len(p.free[class]) >= maxPooled {
		sb.buffer.Release()
		return
	}
	p.free[class] = append(p.free[class], sb)
}

// clear frees every pooled buffer.
func (p *stagingPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.free {
		for _, sb := range p.free[c] {
			sb.buffer.Release()
		}
		p.free[c] = nil
	}
}

func (p *stagingPool) stats() (hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.free {
		pooled += len(f)
	}
	return p.hits, p.misses, pooled
}
