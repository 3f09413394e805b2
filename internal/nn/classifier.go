package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/garb-ml/garb/internal/tensor"
)

const (
	// NumClasses is the size of the label space.
	NumClasses = 10
	// ImageSize is the height and width of input images.
	ImageSize = 28

	kernelSize = 5
	poolSize   = 2
)

// ClassifierConfig holds the four structural stage widths of the
// classifier. The widths are fixed for the lifetime of one model instance;
// two models with different widths produce structurally incompatible
// snapshots.
type ClassifierConfig struct {
	Conv1   int // channels of the first convolutional stage
	Conv2   int // channels of the second convolutional stage
	Hidden1 int // units of the first fully connected stage
	Hidden2 int // units of the second fully connected stage
}

// DefaultClassifierConfig returns the LeNet-5 stage widths.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{Conv1: 6, Conv2: 16, Hidden1: 120, Hidden2: 84}
}

// Validate checks that every stage width is positive.
func (c ClassifierConfig) Validate() error {
	if c.Conv1 <= 0 || c.Conv2 <= 0 || c.Hidden1 <= 0 || c.Hidden2 <= 0 {
		return fmt.Errorf("nn: classifier widths must be positive, got %+v", c)
	}
	return nil
}

// Classifier is a LeNet-style convolutional network mapping a batch of
// single-channel 28x28 images to 10 class scores.
//
// Architecture:
//
//	Input:   [batch, 1, 28, 28]
//	Conv1:   1 -> c1 channels, 5x5 kernel -> [batch, c1, 24, 24]
//	ReLU
//	MaxPool: 2x2 -> [batch, c1, 12, 12]
//	Conv2:   c1 -> c2 channels, 5x5 kernel -> [batch, c2, 8, 8]
//	ReLU
//	MaxPool: 2x2 -> [batch, c2, 4, 4]
//	Flatten: -> [batch, c2*16]
//	FC1:     c2*16 -> h1, ReLU
//	FC2:     h1 -> h2, ReLU
//	FC3:     h2 -> 10 (raw scores, no softmax)
type Classifier struct {
	cfg    ClassifierConfig
	layers []Module
	params []*Parameter
}

// NewClassifier constructs a classifier with freshly initialized
// parameters. The RNG drives Xavier initialization; pass a seeded RNG for
// reproducible runs.
func NewClassifier(cfg ClassifierConfig, rng *rand.Rand) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 28 -> 24 -> 12 -> 8 -> 4 with two conv(5)+pool(2) stages.
	flat := cfg.Conv2 * 4 * 4

	layers := []Module{
		NewConv2D("conv1", 1, cfg.Conv1, kernelSize, 1, 0, rng),
		NewReLU(),
		NewMaxPool2D(poolSize, poolSize),
		NewConv2D("conv2", cfg.Conv1, cfg.Conv2, kernelSize, 1, 0, rng),
		NewReLU(),
		NewMaxPool2D(poolSize, poolSize),
		NewFlatten(),
		NewLinear("fc1", flat, cfg.Hidden1, rng),
		NewReLU(),
		NewLinear("fc2", cfg.Hidden1, cfg.Hidden2, rng),
		NewReLU(),
		NewLinear("fc3", cfg.Hidden2, NumClasses, rng),
	}

	var params []*Parameter
	for _, layer := range layers {
		params = append(params, layer.Parameters()...)
	}

	return &Classifier{cfg: cfg, layers: layers, params: params}, nil
}

// Forward produces one score vector per image.
//
// Accepts [batch, 1, 28, 28] or flattened [batch, 784] input and returns
// [batch, 10] raw scores.
func (m *Classifier) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	switch len(shape) {
	case 2:
		input = input.Reshape(shape[0], 1, ImageSize, ImageSize)
	case 4:
		// already NCHW
	default:
		panic(fmt.Sprintf("classifier: expected 2D or 4D input, got %dD", len(shape)))
	}

	x := input
	for _, layer := range m.layers {
		x = layer.Forward(x)
	}
	return x
}

// Backward propagates the loss gradient through the network in reverse
// layer order, accumulating parameter gradients.
func (m *Classifier) Backward(grad *tensor.Tensor) {
	g := grad
	for i := len(m.layers) - 1; i >= 0; i-- {
		g = m.layers[i].Backward(g)
	}
}

// Parameters returns all trainable parameters in layer order.
func (m *Classifier) Parameters() []*Parameter {
	return m.params
}

// State returns an immutable deep-copy snapshot of all parameters.
func (m *Classifier) State() *Snapshot {
	return TakeSnapshot(m.params)
}

// Load overwrites all parameters in place from the snapshot.
//
// Fails with ErrShapeMismatch if the snapshot was taken from a model with
// different stage widths.
func (m *Classifier) Load(s *Snapshot) error {
	return s.Restore(m.params)
}

// Config returns the stage widths this model was built with.
func (m *Classifier) Config() ClassifierConfig {
	return m.cfg
}

// NumParameters returns the total number of trainable scalar values.
func (m *Classifier) NumParameters() int {
	total := 0
	for _, p := range m.params {
		total += p.Tensor().NumElements()
	}
	return total
}

// String returns a layer-by-layer description of the architecture.
func (m *Classifier) String() string {
	var b strings.Builder
	b.WriteString("Classifier(\n")
	for _, layer := range m.layers {
		if s, ok := layer.(fmt.Stringer); ok {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}
	b.WriteString(")")
	return b.String()
}
