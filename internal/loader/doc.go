// Package loader reads and writes tensor files for the Born tensor core.
//
// SafeTensors files are parsed with github.com/nlpodyssey/safetensors and
// turned into contiguous CPU strided tensors, which can then be handed to a
// producer (the CPU packer, the WebGPU backend) to obtain opaque tensors.
//
// Example:
//
//	f, err := loader.LoadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Release()
//
//	w, ok := f.Lookup("layers.0.weight")
package loader
