// Package nn implements the neural network layers used by the garb
// classifier.
//
// Layers expose explicit forward and backward passes instead of a gradient
// tape: the classifier is a fixed feed-forward chain, so each layer caches
// whatever its backward pass needs during Forward and the chain is unwound
// by calling Backward in reverse order.
//
// Building blocks:
//   - Module interface: forward/backward/parameters capability set
//   - Parameter: trainable tensor paired with its gradient buffer
//   - Conv2D, MaxPool2D, ReLU, Flatten, Linear: the LeNet-style layers
//   - CrossEntropyLoss: log-softmax + NLL with analytic gradient
//   - Classifier: the full model with snapshot/restore over its parameters
package nn

import "github.com/garb-ml/garb/internal/tensor"

// Module is the capability set shared by all layers.
//
// Forward consumes an input tensor and produces an output tensor, caching
// intermediate state for the following Backward call. Backward consumes the
// gradient of the loss w.r.t. this layer's output, accumulates gradients
// into the layer's parameters, and returns the gradient w.r.t. the input.
//
// A Backward call is only valid after the matching Forward call on the same
// layer instance; layers are not safe for concurrent use.
type Module interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	// Modules without trainable state return an empty slice.
	Parameters() []*Parameter
}
