package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/tensorimpl/internal/tensor"
	"github.com/nlpodyssey/safetensors"
)

// Common errors.
var (
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrNotContiguous    = errors.New("tensor is not contiguous")
)

// Named is a tensor with its key in a safetensors file.
type Named struct {
	Name   string
	Tensor *tensor.StridedImpl
}

// File is the content of a safetensors file.
type File struct {
	Tensors  []Named           // Sorted by name.
	Metadata map[string]string // The __metadata__ entry; may be nil.
}

// Lookup returns the tensor stored under name.
func (f *File) Lookup(name string) (*tensor.StridedImpl, bool) {
	i := sort.Search(len(f.Tensors), func(i int) bool { return f.Tensors[i].Name >= name })
	if i < len(f.Tensors) && f.Tensors[i].Name == name {
		return f.Tensors[i].Tensor, true
	}
	return nil, false
}

// Release releases every tensor of the file.
func (f *File) Release() {
	for _, n := range f.Tensors {
		n.Tensor.Release()
	}
}

// LoadSafeTensors reads a safetensors file from disk.
func LoadSafeTensors(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fp.Close()

	f, err := ReadSafeTensors(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ReadSafeTensors parses a whole safetensors stream into CPU strided
// tensors. Tensor data is copied out of the stream buffer.
func ReadSafeTensors(r io.Reader) (*File, error) {
	buffer, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read safetensors: %w", err)
	}

	st, err := safetensors.Deserialize(buffer)
	if err != nil {
		return nil, fmt.Errorf("invalid safetensors: %w", err)
	}
	_, header, err := safetensors.ReadMetadata(buffer)
	if err != nil {
		return nil, fmt.Errorf("invalid safetensors: %w", err)
	}

	f := &File{Metadata: header.Metadata()}
	for _, nv := range st.Tensors() {
		t, err := fromView(nv.TensorView)
		if err != nil {
			f.Release()
			return nil, fmt.Errorf("tensor %q: %w", nv.Name, err)
		}
		f.Tensors = append(f.Tensors, Named{Name: nv.Name, Tensor: t})
	}
	sort.Slice(f.Tensors, func(i, j int) bool { return f.Tensors[i].Name < f.Tensors[j].Name })
	return f, nil
}

// SaveSafeTensors writes f to a file at path.
func SaveSafeTensors(path string, f *File) error {
	var buf bytes.Buffer
	if err := WriteSafeTensors(&buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// WriteSafeTensors serializes the contiguous tensors of f.
func WriteSafeTensors(w io.Writer, f *File) error {
	views := make(map[string]safetensors.TensorView, len(f.Tensors))
	for _, n := range f.Tensors {
		view, err := toView(n.Tensor)
		if err != nil {
			return fmt.Errorf("tensor %q: %w", n.Name, err)
		}
		views[n.Name] = view
	}
	if err := safetensors.SerializeToWriter(views, f.Metadata, w); err != nil {
		return fmt.Errorf("failed to serialize safetensors: %w", err)
	}
	return nil
}

func fromView(view safetensors.TensorView) (*tensor.StridedImpl, error) {
	dtype, err := toDataType(view.DType())
	if err != nil {
		return nil, err
	}
	shape := make(tensor.Shape, len(view.Shape()))
	for i, d := range view.Shape() {
		shape[i] = int(d)
	}

	t, err := tensor.NewStrided(tensor.CPUTypeID, dtype, tensor.CPU, shape)
	if err != nil {
		return nil, err
	}
	if len(view.Data()) != t.ByteSize() {
		t.Release()
		return nil, fmt.Errorf("data is %d bytes, shape %v of %s needs %d", len(view.Data()), shape, dtype, t.ByteSize())
	}
	copy(t.Bytes(), view.Data())
	return t, nil
}

func toView(t *tensor.StridedImpl) (safetensors.TensorView, error) {
	if !t.HasStorage() || !t.IsContiguous(tensor.MemoryFormatContiguous) {
		return safetensors.TensorView{}, ErrNotContiguous
	}
	dtype, err := fromDataType(t.DType())
	if err != nil {
		return safetensors.TensorView{}, err
	}
	shape := make([]uint64, t.Dim())
	for i, d := range t.Shape() {
		shape[i] = uint64(d)
	}
	return safetensors.NewTensorView(dtype, shape, t.Bytes())
}

var dtypes = map[safetensors.DType]tensor.DataType{
	safetensors.BOOL: tensor.Bool,
	safetensors.U8:   tensor.Uint8,
	safetensors.I32:  tensor.Int32,
	safetensors.I64:  tensor.Int64,
	safetensors.F16:  tensor.Float16,
	safetensors.BF16: tensor.BFloat16,
	safetensors.F32:  tensor.Float32,
	safetensors.F64:  tensor.Float64,
}

func toDataType(dt safetensors.DType) (tensor.DataType, error) {
	if d, ok := dtypes[dt]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
}

func fromDataType(dt tensor.DataType) (safetensors.DType, error) {
	for st, d := range dtypes {
		if d == dt {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
}
