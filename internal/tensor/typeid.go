package tensor

// TypeID identifies the implementation that produced a tensor.
// Backends use it to recognize tensors whose handle they understand.
type TypeID int

// Known tensor type identifiers.
const (
	UndefinedTypeID TypeID = iota
	CPUTypeID              // strided tensor in host memory
	PackedCPUTypeID        // opaque tile-packed host layout
	WebGPUTypeID           // opaque WebGPU storage buffer
	OpaqueTypeID           // opaque tensor from an external producer
)

// String returns a human-readable type id name.
func (id TypeID) String() string {
	switch id {
	case UndefinedTypeID:
		return "Undefined"
	case CPUTypeID:
		return "CPU"
	case PackedCPUTypeID:
		return "PackedCPU"
	case WebGPUTypeID:
		return "WebGPU"
	case OpaqueTypeID:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// IsOpaque reports whether tensors with this type id are backed by a handle
// rather than a strided storage.
func (id TypeID) IsOpaque() bool {
	switch id {
	case PackedCPUTypeID, WebGPUTypeID, OpaqueTypeID:
		return true
	default:
		return false
	}
}
