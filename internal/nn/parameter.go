package nn

import "github.com/garb-ml/garb/internal/tensor"

// Parameter is a trainable tensor paired with its gradient buffer.
//
// The gradient buffer is allocated at construction with the same shape as
// the data tensor. Backward passes accumulate into it with +=, so ZeroGrad
// must be called before every optimization step to avoid carrying gradients
// across iterations.
type Parameter struct {
	name string
	data *tensor.Tensor
	grad *tensor.Tensor
}

// NewParameter creates a trainable parameter with a zeroed gradient buffer.
func NewParameter(name string, data *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
		grad: tensor.Zeros(data.Shape()),
	}
}

// Name returns the parameter name (e.g. "conv1.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter data tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.data
}

// Grad returns the gradient buffer.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad resets the gradient buffer in place.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}
