// Package tensor implements dense row-major float32 tensors for the garb
// experiment harness.
//
// Tensors are plain contiguous buffers with a shape. There is no device or
// dtype abstraction: every model in this repository trains float32 on the
// CPU, and the layers in internal/nn index the backing slice directly.
package tensor

import "fmt"

// Shape describes tensor dimensions, outermost first.
//
// The NCHW convention is used for image batches:
// [batch, channels, height, width].
type Shape []int

// NumElements returns the total number of elements for this shape.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, dim := range s {
		if dim != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// String formats the shape as [d0 d1 ...].
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// Tensor is a dense row-major float32 tensor.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	for _, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension %d in shape %v", dim, shape))
		}
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// FromSlice creates a tensor backed by data. The slice is used directly,
// not copied; its length must match the shape's element count.
func FromSlice(data []float32, shape Shape) *Tensor {
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements()))
	}
	return &Tensor{shape: shape.Clone(), data: data}
}

// Zeros creates a zero-filled tensor. Alias of New kept for call-site
// readability in layer initialization.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Shape returns the tensor shape. Callers must not modify it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the backing slice. Mutations are visible to every view of
// this tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Clone returns a deep copy with independent backing storage.
//
// Snapshots of model parameters rely on this value semantics: a clone taken
// before an optimizer step is unaffected by the step.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// Reshape returns a view over the same backing storage with a new shape.
// The element count must be preserved.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), shape, shape.NumElements()))
	}
	return &Tensor{shape: shape.Clone(), data: t.data}
}

// CopyFrom overwrites this tensor's data in place from src.
// Shapes must match exactly.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("tensor: copy shape mismatch: dst %v, src %v", t.shape, src.shape)
	}
	copy(t.data, src.data)
	return nil
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float32) {
	for i := range t.data {
		t.data[i] = v
	}
}

// Zero resets every element to 0. Used by gradient buffers between steps.
func (t *Tensor) Zero() {
	for i := range t.data {
		t.data[i] = 0
	}
}
