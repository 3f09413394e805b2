package nn

import (
	"fmt"
	"math/rand"

	"github.com/garb-ml/garb/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// where out_h = (height + 2*padding - kernel)/stride + 1 and likewise for
// out_w. Weights use Xavier initialization with
// fan_in = in_channels*kernel² and fan_out = out_channels*kernel².
type Conv2D struct {
	inChannels  int
	outChannels int
	kernel      int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel, kernel]
	bias   *Parameter // [out_channels]

	input *tensor.Tensor // cached by Forward for the backward pass
}

// NewConv2D creates a square-kernel convolutional layer.
func NewConv2D(name string, inChannels, outChannels, kernel, stride, padding int, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernel <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernel))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	fanIn := inChannels * kernel * kernel
	fanOut := outChannels * kernel * kernel
	weight := Xavier(rng, fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernel, kernel})
	bias := Zeros(tensor.Shape{outChannels})

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", bias),
	}
}

// Forward performs direct convolution.
//
// Input: [batch, in_channels, h, w]. Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", shape[1], c.inChannels))
	}

	c.input = input
	batch, h, w := shape[0], shape[2], shape[3]
	outH := (h+2*c.padding-c.kernel)/c.stride + 1
	outW := (w+2*c.padding-c.kernel)/c.stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: input %dx%d too small for kernel %d", h, w, c.kernel))
	}

	out := tensor.New(tensor.Shape{batch, c.outChannels, outH, outW})
	outData := out.Data()
	inData := input.Data()
	wData := c.weight.Tensor().Data()
	bData := c.bias.Tensor().Data()

	for n := 0; n < batch; n++ {
		inBatch := inData[n*c.inChannels*h*w:]
		outBatch := outData[n*c.outChannels*outH*outW:]
		for oc := 0; oc < c.outChannels; oc++ {
			wOut := wData[oc*c.inChannels*c.kernel*c.kernel:]
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := bData[oc]
					for ic := 0; ic < c.inChannels; ic++ {
						inChan := inBatch[ic*h*w:]
						wChan := wOut[ic*c.kernel*c.kernel:]
						for kh := 0; kh < c.kernel; kh++ {
							ih := oh*c.stride + kh - c.padding
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < c.kernel; kw++ {
								iw := ow*c.stride + kw - c.padding
								if iw < 0 || iw >= w {
									continue
								}
								sum += inChan[ih*w+iw] * wChan[kh*c.kernel+kw]
							}
						}
					}
					outBatch[oc*outH*outW+oh*outW+ow] = sum
				}
			}
		}
	}

	return out
}

// Backward distributes the output gradient back onto the input (transposed
// convolution) and accumulates kernel and bias gradients.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.input == nil {
		panic("conv2d: Backward called before Forward")
	}

	inShape := c.input.Shape()
	batch, h, w := inShape[0], inShape[2], inShape[3]
	gShape := grad.Shape()
	outH, outW := gShape[2], gShape[3]

	gradIn := tensor.New(inShape.Clone())
	giData := gradIn.Data()
	gData := grad.Data()
	inData := c.input.Data()
	wData := c.weight.Tensor().Data()
	gwData := c.weight.Grad().Data()
	gbData := c.bias.Grad().Data()

	for n := 0; n < batch; n++ {
		inBatch := inData[n*c.inChannels*h*w:]
		giBatch := giData[n*c.inChannels*h*w:]
		gBatch := gData[n*c.outChannels*outH*outW:]
		for oc := 0; oc < c.outChannels; oc++ {
			wOut := wData[oc*c.inChannels*c.kernel*c.kernel:]
			gwOut := gwData[oc*c.inChannels*c.kernel*c.kernel:]
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					g := gBatch[oc*outH*outW+oh*outW+ow]
					if g == 0 {
						continue
					}
					gbData[oc] += g
					for ic := 0; ic < c.inChannels; ic++ {
						inChan := inBatch[ic*h*w:]
						giChan := giBatch[ic*h*w:]
						wChan := wOut[ic*c.kernel*c.kernel:]
						gwChan := gwOut[ic*c.kernel*c.kernel:]
						for kh := 0; kh < c.kernel; kh++ {
							ih := oh*c.stride + kh - c.padding
							if ih < 0 || ih >= h {
								continue
							}
							for kw := 0; kw < c.kernel; kw++ {
								iw := ow*c.stride + kw - c.padding
								if iw < 0 || iw >= w {
									continue
								}
								giChan[ih*w+iw] += g * wChan[kh*c.kernel+kw]
								gwChan[kh*c.kernel+kw] += g * inChan[ih*w+iw]
							}
						}
					}
				}
			}
		}
	}

	return gradIn
}

// Parameters returns [weight, bias].
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// OutputSize computes output spatial dimensions for a given input size.
func (c *Conv2D) OutputSize(inputH, inputW int) (int, int) {
	outH := (inputH+2*c.padding-c.kernel)/c.stride + 1
	outW := (inputW+2*c.padding-c.kernel)/c.stride + 1
	return outH, outW
}

// String returns a description of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in=%d, out=%d, kernel=%d, stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernel, c.stride, c.padding)
}
