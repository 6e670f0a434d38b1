// Package loader provides tensor file loading for the Born tensor core.
//
// This package wraps internal loader implementations and exports a clean public API
// for reading and writing SafeTensors files.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/tensorimpl/backend/cpu"
//	    "github.com/born-ml/tensorimpl/loader"
//	)
//
//	f, err := loader.LoadSafeTensors("path/to/model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Release()
//
//	w, _ := f.Lookup("model.layers.0.attn.q_proj.weight")
//	packed, err := cpu.New().ToOpaque(w)
package loader

import (
	"io"

	"github.com/born-ml/tensorimpl/internal/loader"
)

// File is the content of a SafeTensors file.
type File = loader.File

// Named is a tensor with its key in a SafeTensors file.
type Named = loader.Named

// Errors.
var (
	ErrUnsupportedDType = loader.ErrUnsupportedDType
	ErrNotContiguous    = loader.ErrNotContiguous
)

// LoadSafeTensors reads a SafeTensors file from disk.
func LoadSafeTensors(path string) (*File, error) {
	return loader.LoadSafeTensors(path)
}

// ReadSafeTensors parses a whole SafeTensors stream.
func ReadSafeTensors(r io.Reader) (*File, error) {
	return loader.ReadSafeTensors(r)
}

// SaveSafeTensors writes f to a file at path.
func SaveSafeTensors(path string, f *File) error {
	return loader.SaveSafeTensors(path, f)
}

// WriteSafeTensors serializes the contiguous tensors of f.
func WriteSafeTensors(w io.Writer, f *File) error {
	return loader.WriteSafeTensors(w, f)
}
