package nn

import (
	"testing"

	"github.com/garb-ml/garb/internal/tensor"
)

func TestMaxPool2D_Forward(t *testing.T) {
	pool := NewMaxPool2D(2, 2)

	input := tensor.FromSlice([]float32{
		1, 3, 2, 4,
		5, 7, 6, 8,
		9, 11, 10, 12,
		13, 15, 14, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := pool.Forward(input)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("output shape: got %v, want [1 1 2 2]", output.Shape())
	}
	want := []float32{7, 8, 15, 16}
	for i, exp := range want {
		if got := output.Data()[i]; got != exp {
			t.Errorf("output[%d]: got %.1f, want %.1f", i, got, exp)
		}
	}
}

func TestMaxPool2D_BackwardRoutesToArgmax(t *testing.T) {
	pool := NewMaxPool2D(2, 2)

	input := tensor.FromSlice([]float32{
		1, 3, 2, 4,
		5, 7, 6, 8,
		9, 11, 10, 12,
		13, 15, 14, 16,
	}, tensor.Shape{1, 1, 4, 4})
	_ = pool.Forward(input)

	grad := tensor.FromSlice([]float32{10, 20, 30, 40}, tensor.Shape{1, 1, 2, 2})
	gradIn := pool.Backward(grad)

	// Only the argmax positions (7, 8, 15, 16) receive gradient.
	want := []float32{
		0, 0, 0, 0,
		0, 10, 0, 20,
		0, 0, 0, 0,
		0, 30, 0, 40,
	}
	for i, exp := range want {
		if got := gradIn.Data()[i]; got != exp {
			t.Errorf("gradIn[%d]: got %.1f, want %.1f", i, got, exp)
		}
	}
}

func TestReLU_ForwardBackward(t *testing.T) {
	relu := NewReLU()

	input := tensor.FromSlice([]float32{-2, -0.5, 0, 1, 3}, tensor.Shape{5})
	output := relu.Forward(input)

	wantOut := []float32{0, 0, 0, 1, 3}
	for i, exp := range wantOut {
		if got := output.Data()[i]; got != exp {
			t.Errorf("output[%d]: got %.1f, want %.1f", i, got, exp)
		}
	}

	grad := tensor.FromSlice([]float32{1, 1, 1, 1, 1}, tensor.Shape{5})
	gradIn := relu.Backward(grad)

	wantGrad := []float32{0, 0, 0, 1, 1}
	for i, exp := range wantGrad {
		if got := gradIn.Data()[i]; got != exp {
			t.Errorf("gradIn[%d]: got %.1f, want %.1f", i, got, exp)
		}
	}
}

func TestFlatten_RoundTrip(t *testing.T) {
	flat := NewFlatten()

	input := tensor.New(tensor.Shape{2, 3, 4, 4})
	output := flat.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 48}) {
		t.Fatalf("flattened shape: got %v, want [2 48]", output.Shape())
	}

	grad := tensor.New(tensor.Shape{2, 48})
	gradIn := flat.Backward(grad)
	if !gradIn.Shape().Equal(tensor.Shape{2, 3, 4, 4}) {
		t.Errorf("restored shape: got %v, want [2 3 4 4]", gradIn.Shape())
	}
}
