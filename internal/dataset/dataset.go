// Package dataset supplies Fashion-MNIST samples to the trainer and
// evaluator.
//
// The dataset is the classic 10-class clothing benchmark: 60,000 training
// and 10,000 test images, 28x28 grayscale, distributed in the MNIST IDX
// binary format. This package downloads the files when missing, parses
// them, and exposes splits and fixed-size batch loaders.
package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptySplit is returned when a split with zero samples is used where
// samples are required (batching, training, evaluation).
var ErrEmptySplit = errors.New("dataset: empty split")

// Classes lists the human-readable Fashion-MNIST class names indexed by
// label id.
var Classes = []string{
	"T-shirt/top",
	"Trouser",
	"Pullover",
	"Dress",
	"Coat",
	"Sandal",
	"Shirt",
	"Sneaker",
	"Bag",
	"Ankle boot",
}

// ImageSide is the width and height of one image.
const ImageSide = 28

// ImagePixels is the flattened size of one image.
const ImagePixels = ImageSide * ImageSide

// Split is a finite, indexable collection of (image, label) samples.
//
// Samples are immutable once loaded. Partition carves disjoint sub-splits;
// views share backing storage with the parent, which is safe because
// nothing mutates samples after load.
type Split struct {
	images [][]float32 // each ImagePixels long, values in [0, 1]
	labels []int
}

// NewSplit builds a split from parallel image and label slices.
func NewSplit(images [][]float32, labels []int) (*Split, error) {
	if len(images) != len(labels) {
		return nil, fmt.Errorf("dataset: %d images but %d labels", len(images), len(labels))
	}
	for i, img := range images {
		if len(img) != ImagePixels {
			return nil, fmt.Errorf("dataset: image %d has %d pixels, want %d", i, len(img), ImagePixels)
		}
	}
	for i, label := range labels {
		if label < 0 || label >= len(Classes) {
			return nil, fmt.Errorf("dataset: label %d out of range at sample %d", label, i)
		}
	}
	return &Split{images: images, labels: labels}, nil
}

// Len returns the number of samples.
func (s *Split) Len() int {
	return len(s.images)
}

// Image returns the normalized pixels of sample i.
func (s *Split) Image(i int) []float32 {
	return s.images[i]
}

// Label returns the class id of sample i.
func (s *Split) Label(i int) int {
	return s.labels[i]
}

// Partition divides the split into a disjoint (train, validation) pair.
// valFraction is the share of samples assigned to validation, taken from
// the tail. Both resulting splits must be non-empty.
func (s *Split) Partition(valFraction float64) (*Split, *Split, error) {
	if valFraction <= 0 || valFraction >= 1 {
		return nil, nil, fmt.Errorf("dataset: validation fraction %.3f outside (0, 1)", valFraction)
	}
	cut := int(float64(s.Len()) * (1.0 - valFraction))
	if cut == 0 || cut == s.Len() {
		return nil, nil, fmt.Errorf("dataset: partition of %d samples at fraction %.3f leaves an empty side: %w",
			s.Len(), valFraction, ErrEmptySplit)
	}

	train := &Split{images: s.images[:cut], labels: s.labels[:cut]}
	val := &Split{images: s.images[cut:], labels: s.labels[cut:]}
	return train, val, nil
}
