package nn

import "github.com/garb-ml/garb/internal/tensor"

// ReLU applies the rectified linear unit element-wise: max(0, x).
//
// Forward caches the pass-through mask so Backward can zero the gradient
// where the input was negative.
type ReLU struct {
	mask []bool
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward computes max(0, x) element-wise.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	inData := input.Data()
	out := tensor.New(input.Shape())
	outData := out.Data()

	r.mask = make([]bool, len(inData))
	for i, v := range inData {
		if v > 0 {
			outData[i] = v
			r.mask[i] = true
		}
	}
	return out
}

// Backward passes the gradient through where the input was positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.mask == nil {
		panic("relu: Backward called before Forward")
	}
	gData := grad.Data()
	gradIn := tensor.New(grad.Shape())
	giData := gradIn.Data()
	for i, pass := range r.mask {
		if pass {
			giData[i] = gData[i]
		}
	}
	return gradIn
}

// Parameters returns an empty slice.
func (r *ReLU) Parameters() []*Parameter {
	return []*Parameter{}
}

// Flatten reshapes [batch, ...] to [batch, features] on the way forward and
// restores the original shape on the way back. Both directions are views,
// no data is copied.
type Flatten struct {
	inShape tensor.Shape
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward collapses all dimensions after the batch dimension.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	f.inShape = input.Shape().Clone()
	batch := f.inShape[0]
	return input.Reshape(batch, input.NumElements()/batch)
}

// Backward restores the cached input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.inShape == nil {
		panic("flatten: Backward called before Forward")
	}
	return grad.Reshape(f.inShape...)
}

// Parameters returns an empty slice.
func (f *Flatten) Parameters() []*Parameter {
	return []*Parameter{}
}
