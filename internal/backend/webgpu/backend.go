//go:build windows

package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/tensorimpl/internal/tensor"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// Backend owns a WebGPU device and moves tensors between host strided
// memory and opaque GPU buffers.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	config  Config
	log     *logrus.Entry
	staging *stagingPool

	// Memory tracking
	memoryStats struct {
		allocatedBytes  uint64
		peakMemoryBytes uint64
		activeBuffers   int64
		mu              sync.RWMutex
	}
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New(cfg Config) (backend *Backend, err error) {
	log := cfg.logger()

	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
			log.WithError(err).Warn("webgpu initialization failed")
		}
	}()

	instance := wgpu.CreateInstance(nil)

	opts := &wgpu.RequestAdapterOptions{PowerPreference: wgpu.PowerPreferenceLowPower}
	if cfg.HighPerformance {
		opts.PowerPreference = wgpu.PowerPreferenceHighPerformance
	}
	adapter, adapterErr := instance.RequestAdapter(opts)
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request device: %w", ErrUnavailable, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to get queue", ErrUnavailable)
	}

	log.WithField("high_performance", cfg.HighPerformance).Debug("webgpu device acquired")

	return &Backend{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		config:   cfg,
		log:      log,
		staging:  newStagingPool(device, cfg.Label),
	}, nil
}

// Release releases the device. Buffers still referenced by opaque tensors
// must be released before the backend.
func (b *Backend) Release() {
	b.memoryStats.mu.RLock()
	active := b.memoryStats.activeBuffers
	b.memoryStats.mu.RUnlock()
	if active > 0 {
		b.log.WithField("active_buffers", active).Warn("releasing backend with live buffers")
	}

	if b.staging != nil {
		b.staging.clear()
		b.staging = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// MemoryStats returns current GPU memory usage statistics.
func (b *Backend) MemoryStats() MemoryStats {
	hits, misses, pooled := b.staging.stats()

	b.memoryStats.mu.RLock()
	defer b.memoryStats.mu.RUnlock()

	return MemoryStats{
		AllocatedBytes:  b.memoryStats.allocatedBytes,
		PeakMemoryBytes: b.memoryStats.peakMemoryBytes,
		ActiveBuffers:   b.memoryStats.activeBuffers,
		StagingHits:     hits,
		StagingMisses:   misses,
		StagingPooled:   pooled,
	}
}

// trackBufferAllocation records a buffer allocation in memory statistics.
func (b *Backend) trackBufferAllocation(size uint64) {
	b.memoryStats.mu.Lock()
	defer b.memoryStats.mu.Unlock()

	b.memoryStats.allocatedBytes += size
	b.memoryStats.activeBuffers++
	b.memoryStats.peakMemoryBytes = max(b.memoryStats.peakMemoryBytes, b.memoryStats.allocatedBytes)
}

// trackBufferRelease records a buffer release in memory statistics.
func (b *Backend) trackBufferRelease(size uint64) {
	b.memoryStats.mu.Lock()
	defer b.memoryStats.mu.Unlock()

	if b.memoryStats.allocatedBytes >= size {
		b.memoryStats.allocatedBytes -= size
	}
	b.memoryStats.activeBuffers--
}
