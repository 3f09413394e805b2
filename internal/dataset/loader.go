package dataset

import (
	"fmt"
	"math/rand"

	"github.com/garb-ml/garb/internal/tensor"
)

// Batch is a fixed-cardinality group of samples materialized as one images
// tensor plus parallel ground-truth labels. The last batch of a pass may be
// short.
type Batch struct {
	Images *tensor.Tensor // [n, 1, 28, 28]
	Labels []int
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Loader produces batches over a split.
//
// A shuffled loader reorders samples with Fisher-Yates on every Batches
// call, so each training epoch sees a fresh permutation. A deterministic
// loader always yields samples in split order, which is what evaluation
// uses.
type Loader struct {
	split     *Split
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader creates a loader. rng may be nil for a deterministic loader.
func NewLoader(split *Split, batchSize int, shuffle bool, rng *rand.Rand) (*Loader, error) {
	if split.Len() == 0 {
		return nil, ErrEmptySplit
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}
	if shuffle && rng == nil {
		return nil, fmt.Errorf("dataset: shuffled loader requires an RNG")
	}
	return &Loader{split: split, batchSize: batchSize, shuffle: shuffle, rng: rng}, nil
}

// NumSamples returns the number of samples one full pass covers.
func (l *Loader) NumSamples() int {
	return l.split.Len()
}

// Batches materializes one full pass over the split.
func (l *Loader) Batches() []Batch {
	n := l.split.Len()

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	numBatches := (n + l.batchSize - 1) / l.batchSize
	batches := make([]Batch, 0, numBatches)

	for start := 0; start < n; start += l.batchSize {
		end := start + l.batchSize
		if end > n {
			end = n
		}
		size := end - start

		images := tensor.New(tensor.Shape{size, 1, ImageSide, ImageSide})
		labels := make([]int, size)
		data := images.Data()

		for i := 0; i < size; i++ {
			idx := indices[start+i]
			copy(data[i*ImagePixels:(i+1)*ImagePixels], l.split.Image(idx))
			labels[i] = l.split.Label(idx)
		}

		batches = append(batches, Batch{Images: images, Labels: labels})
	}

	return batches
}
