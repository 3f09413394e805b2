package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticSplit(t *testing.T, n int) *Split {
	t.Helper()
	images := make([][]float32, n)
	labels := make([]int, n)
	for i := range images {
		img := make([]float32, ImagePixels)
		img[i%ImagePixels] = 1.0
		images[i] = img
		labels[i] = i % len(Classes)
	}
	s, err := NewSplit(images, labels)
	require.NoError(t, err)
	return s
}

func TestNewSplit_Validation(t *testing.T) {
	_, err := NewSplit(make([][]float32, 2), make([]int, 3))
	assert.Error(t, err, "mismatched lengths must be rejected")

	_, err = NewSplit([][]float32{make([]float32, 10)}, []int{0})
	assert.Error(t, err, "wrong pixel count must be rejected")

	_, err = NewSplit([][]float32{make([]float32, ImagePixels)}, []int{10})
	assert.Error(t, err, "label outside [0, 10) must be rejected")
}

func TestSplit_PartitionDisjoint(t *testing.T) {
	s := syntheticSplit(t, 100)

	train, val, err := s.Partition(0.2)
	require.NoError(t, err)

	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, val.Len())

	// The tail sample of train and head sample of val come from adjacent
	// positions of the parent, never the same one.
	assert.Equal(t, s.Label(79), train.Label(79))
	assert.Equal(t, s.Label(80), val.Label(0))
}

func TestSplit_PartitionBadFraction(t *testing.T) {
	s := syntheticSplit(t, 10)

	for _, fraction := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := s.Partition(fraction)
		assert.Error(t, err, "fraction %f must be rejected", fraction)
	}
}

func TestSplit_PartitionTooSmall(t *testing.T) {
	s := syntheticSplit(t, 1)
	_, _, err := s.Partition(0.2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySplit)
}

func TestClasses_TenNames(t *testing.T) {
	require.Len(t, Classes, 10)
	assert.Equal(t, "T-shirt/top", Classes[0])
	assert.Equal(t, "Ankle boot", Classes[9])
}
