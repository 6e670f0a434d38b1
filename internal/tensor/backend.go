package tensor

// Producer is implemented by backends that hand out opaque tensors with
// handles of type H and can convert them back to strided form.
//
// Implementations:
//   - internal/backend/cpu: tile-packed host layout (*cpu.PackedBuffer)
//   - internal/backend/webgpu: GPU storage buffers (*webgpu.Buffer)
type Producer[H any] interface {
	// ToOpaque copies a contiguous strided tensor into the backend's layout.
	ToOpaque(src *StridedImpl) (*OpaqueImpl[H], error)

	// ToStrided copies an opaque tensor back into a contiguous strided tensor.
	ToStrided(o *OpaqueImpl[H]) (*StridedImpl, error)

	// Metadata
	Name() string
	Device() Device
}
