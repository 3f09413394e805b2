package nn

import (
	"fmt"
	"math/rand"

	"github.com/garb-ml/garb/internal/tensor"
)

// Linear implements a fully connected layer.
//
// Performs y = x @ W.T + b where:
//   - x is the input with shape [batch, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights use Xavier initialization, biases start at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	input *tensor.Tensor // cached by Forward for the backward pass
}

// NewLinear creates a fully connected layer.
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := Xavier(rng, inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})
	bias := Zeros(tensor.Shape{outFeatures})

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", bias),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch, in_features]. Output shape: [batch, out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}

	l.input = input
	batch := shape[0]

	out := tensor.New(tensor.Shape{batch, l.outFeatures})
	outData := out.Data()
	inData := input.Data()
	wData := l.weight.Tensor().Data()
	bData := l.bias.Tensor().Data()

	for n := 0; n < batch; n++ {
		row := inData[n*l.inFeatures : (n+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			wRow := wData[o*l.inFeatures : (o+1)*l.inFeatures]
			sum := bData[o]
			for i, x := range row {
				sum += x * wRow[i]
			}
			outData[n*l.outFeatures+o] = sum
		}
	}

	return out
}

// Backward accumulates weight and bias gradients and returns the gradient
// w.r.t. the input.
//
//	dW[o,i] += sum_n g[n,o] * x[n,i]
//	db[o]   += sum_n g[n,o]
//	dx[n,i]  = sum_o g[n,o] * W[o,i]
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("linear: Backward called before Forward")
	}
	batch := l.input.Shape()[0]
	if !grad.Shape().Equal(tensor.Shape{batch, l.outFeatures}) {
		panic(fmt.Sprintf("linear: gradient shape %v does not match output [%d %d]",
			grad.Shape(), batch, l.outFeatures))
	}

	gData := grad.Data()
	inData := l.input.Data()
	wData := l.weight.Tensor().Data()
	gwData := l.weight.Grad().Data()
	gbData := l.bias.Grad().Data()

	gradIn := tensor.New(tensor.Shape{batch, l.inFeatures})
	giData := gradIn.Data()

	for n := 0; n < batch; n++ {
		row := inData[n*l.inFeatures : (n+1)*l.inFeatures]
		giRow := giData[n*l.inFeatures : (n+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			g := gData[n*l.outFeatures+o]
			if g == 0 {
				continue
			}
			gbData[o] += g
			wRow := wData[o*l.inFeatures : (o+1)*l.inFeatures]
			gwRow := gwData[o*l.inFeatures : (o+1)*l.inFeatures]
			for i, x := range row {
				gwRow[i] += g * x
				giRow[i] += g * wRow[i]
			}
		}
	}

	return gradIn
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// String returns a description of the layer.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.inFeatures, l.outFeatures)
}
