package nn

import (
	"math"
	"math/rand"

	"github.com/garb-ml/garb/internal/tensor"
)

// Xavier initializes a tensor with Glorot uniform values.
//
// Values are drawn from U(-bound, bound) with
// bound = sqrt(6 / (fan_in + fan_out)), which keeps activation variance
// roughly constant across layers.
//
// The RNG is supplied by the caller so a seeded run is reproducible.
func Xavier(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Zeros creates a zero tensor. Used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor {
	return tensor.Zeros(shape)
}
