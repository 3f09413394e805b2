package nn

import (
	"math/rand"
	"testing"

	"github.com/garb-ml/garb/internal/tensor"
)

func TestLinear_ForwardValues(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fc := NewLinear("fc", 3, 2, rng)

	// W = [[1 2 3], [4 5 6]], b = [0.5, -0.5]
	copy(fc.weight.Tensor().Data(), []float32{1, 2, 3, 4, 5, 6})
	copy(fc.bias.Tensor().Data(), []float32{0.5, -0.5})

	input := tensor.FromSlice([]float32{1, 1, 1, 2, 0, 1}, tensor.Shape{2, 3})
	output := fc.Forward(input)

	// row0: [1+2+3+0.5, 4+5+6-0.5] = [6.5, 14.5]
	// row1: [2+0+3+0.5, 8+0+6-0.5] = [5.5, 13.5]
	want := []float32{6.5, 14.5, 5.5, 13.5}
	for i, exp := range want {
		if got := output.Data()[i]; got != exp {
			t.Errorf("output[%d]: got %.2f, want %.2f", i, got, exp)
		}
	}
}

func TestLinear_BackwardValues(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fc := NewLinear("fc", 2, 2, rng)

	copy(fc.weight.Tensor().Data(), []float32{1, 2, 3, 4})
	fc.bias.Tensor().Zero()

	input := tensor.FromSlice([]float32{5, 6}, tensor.Shape{1, 2})
	_ = fc.Forward(input)

	grad := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	gradIn := fc.Backward(grad)

	// dx = g @ W = [1*1+2*3, 1*2+2*4] = [7, 10]
	if gradIn.Data()[0] != 7 || gradIn.Data()[1] != 10 {
		t.Errorf("gradIn: got %v, want [7 10]", gradIn.Data())
	}

	// dW = g.T @ x = [[5 6], [10 12]]
	wantW := []float32{5, 6, 10, 12}
	for i, exp := range wantW {
		if got := fc.weight.Grad().Data()[i]; got != exp {
			t.Errorf("gradW[%d]: got %.1f, want %.1f", i, got, exp)
		}
	}

	// db = g = [1, 2]
	if fc.bias.Grad().Data()[0] != 1 || fc.bias.Grad().Data()[1] != 2 {
		t.Errorf("gradB: got %v, want [1 2]", fc.bias.Grad().Data())
	}
}

func TestLinear_GradAccumulatesAcrossBatches(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fc := NewLinear("fc", 2, 1, rng)
	copy(fc.weight.Tensor().Data(), []float32{1, 1})
	fc.bias.Tensor().Zero()

	input := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	grad := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1})

	_ = fc.Forward(input)
	_ = fc.Backward(grad)
	_ = fc.Forward(input)
	_ = fc.Backward(grad)

	// Two backward passes without ZeroGrad accumulate.
	if got := fc.bias.Grad().Data()[0]; got != 2 {
		t.Errorf("accumulated gradB: got %.1f, want 2", got)
	}

	fc.bias.ZeroGrad()
	if got := fc.bias.Grad().Data()[0]; got != 0 {
		t.Errorf("gradB after ZeroGrad: got %.1f, want 0", got)
	}
}
