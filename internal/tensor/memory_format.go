package tensor

// MemoryFormat names a memory layout a strided tensor can be checked against.
type MemoryFormat int

// Supported memory formats.
const (
	// MemoryFormatAny accepts whatever layout the tensor caches as contiguous.
	MemoryFormatAny MemoryFormat = iota
	// MemoryFormatContiguous is dense row-major layout.
	MemoryFormatContiguous
	// MemoryFormatChannelsLast is dense NHWC layout for rank-4 tensors.
	MemoryFormatChannelsLast
)

// String returns a human-readable memory format name.
func (f MemoryFormat) String() string {
	switch f {
	case MemoryFormatAny:
		return "any"
	case MemoryFormatContiguous:
		return "contiguous"
	case MemoryFormatChannelsLast:
		return "channels_last"
	default:
		return "unknown"
	}
}
