package nn

import (
	"fmt"

	"github.com/garb-ml/garb/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Pooling reduces spatial dimensions by taking the maximum value in each
// window. The layer has no learnable parameters. Forward records the flat
// input index of every window maximum so Backward can route the gradient
// to exactly the element that produced the output.
type MaxPool2D struct {
	kernel int
	stride int

	inShape tensor.Shape
	argmax  []int // flat input index of the max for each output element
}

// NewMaxPool2D creates a square max pooling layer.
func NewMaxPool2D(kernel, stride int) *MaxPool2D {
	if kernel <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernel))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernel: kernel, stride: stride}
}

// Forward performs max pooling.
//
// Input: [batch, channels, h, w]. Output: [batch, channels, out_h, out_w].
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}

	batch, channels, h, w := shape[0], shape[1], shape[2], shape[3]
	outH := (h-m.kernel)/m.stride + 1
	outW := (w-m.kernel)/m.stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("maxpool2d: input %dx%d too small for kernel %d", h, w, m.kernel))
	}

	m.inShape = shape.Clone()
	out := tensor.New(tensor.Shape{batch, channels, outH, outW})
	m.argmax = make([]int, out.NumElements())

	inData := input.Data()
	outData := out.Data()

	outIdx := 0
	for n := 0; n < batch; n++ {
		for ch := 0; ch < channels; ch++ {
			plane := (n*channels + ch) * h * w
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					baseH := oh * m.stride
					baseW := ow * m.stride
					bestIdx := plane + baseH*w + baseW
					best := inData[bestIdx]
					for kh := 0; kh < m.kernel; kh++ {
						for kw := 0; kw < m.kernel; kw++ {
							idx := plane + (baseH+kh)*w + (baseW + kw)
							if inData[idx] > best {
								best = inData[idx]
								bestIdx = idx
							}
						}
					}
					outData[outIdx] = best
					m.argmax[outIdx] = bestIdx
					outIdx++
				}
			}
		}
	}

	return out
}

// Backward scatters each output gradient to the input element that won the
// max in Forward.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.argmax == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	gData := grad.Data()
	if len(gData) != len(m.argmax) {
		panic(fmt.Sprintf("maxpool2d: gradient has %d elements, expected %d",
			len(gData), len(m.argmax)))
	}

	gradIn := tensor.New(m.inShape)
	giData := gradIn.Data()
	for i, g := range gData {
		// += rather than =, overlapping windows can share a winner.
		giData[m.argmax[i]] += g
	}
	return gradIn
}

// Parameters returns an empty slice; pooling has no learnable parameters.
func (m *MaxPool2D) Parameters() []*Parameter {
	return []*Parameter{}
}

// String returns a description of the layer.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel=%d, stride=%d)", m.kernel, m.stride)
}
