package nn

import (
	"math"
	"testing"

	"github.com/garb-ml/garb/internal/tensor"
)

func floatNear(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func TestCrossEntropy_UniformLogits(t *testing.T) {
	loss := NewCrossEntropyLoss()

	// Equal logits over 4 classes: loss = -log(1/4) = log(4).
	logits := tensor.Zeros(tensor.Shape{2, 4})
	got := loss.Forward(logits, []int{0, 3})

	want := float32(math.Log(4))
	if !floatNear(got, want, 1e-5) {
		t.Errorf("uniform loss: got %f, want %f", got, want)
	}
}

func TestCrossEntropy_ConfidentCorrect(t *testing.T) {
	loss := NewCrossEntropyLoss()

	logits := tensor.FromSlice([]float32{10, 0, 0}, tensor.Shape{1, 3})
	got := loss.Forward(logits, []int{0})

	// Model heavily favors the true class, loss near zero.
	if got > 0.01 {
		t.Errorf("confident correct loss: got %f, want ~0", got)
	}
}

func TestCrossEntropy_LargeLogitsStable(t *testing.T) {
	loss := NewCrossEntropyLoss()

	// Logits beyond float32 exp range; the log-sum-exp trick must keep the
	// result finite.
	logits := tensor.FromSlice([]float32{1000, 999, 998}, tensor.Shape{1, 3})
	got := loss.Forward(logits, []int{0})

	if math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
		t.Fatalf("loss not finite: %f", got)
	}
}

func TestCrossEntropy_BackwardValues(t *testing.T) {
	loss := NewCrossEntropyLoss()

	logits := tensor.Zeros(tensor.Shape{1, 2})
	_ = loss.Forward(logits, []int{0})
	grad := loss.Backward()

	// softmax = [0.5, 0.5]; grad = [0.5-1, 0.5]/1 = [-0.5, 0.5]
	if !floatNear(grad.Data()[0], -0.5, 1e-6) || !floatNear(grad.Data()[1], 0.5, 1e-6) {
		t.Errorf("grad: got %v, want [-0.5 0.5]", grad.Data())
	}
}

func TestCrossEntropy_GradientMatchesFiniteDifference(t *testing.T) {
	logits := tensor.FromSlice([]float32{0.3, -0.2, 0.5, 0.1}, tensor.Shape{2, 2})
	labels := []int{1, 0}

	loss := NewCrossEntropyLoss()
	_ = loss.Forward(logits, labels)
	grad := loss.Backward()

	const eps = 1e-2
	for i := range logits.Data() {
		orig := logits.Data()[i]

		logits.Data()[i] = orig + eps
		up := NewCrossEntropyLoss().Forward(logits, labels)
		logits.Data()[i] = orig - eps
		down := NewCrossEntropyLoss().Forward(logits, labels)
		logits.Data()[i] = orig

		numeric := (up - down) / (2 * eps)
		if !floatNear(grad.Data()[i], numeric, 1e-2) {
			t.Errorf("grad[%d]: analytic %f, numeric %f", i, grad.Data()[i], numeric)
		}
	}
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		scores []float32
		want   int
	}{
		{[]float32{1, 2, 3}, 2},
		{[]float32{5, 2, 3}, 0},
		{[]float32{1, 9, 3, 9}, 1}, // first wins ties
		{[]float32{-4}, 0},
	}
	for _, tt := range tests {
		if got := Argmax(tt.scores); got != tt.want {
			t.Errorf("Argmax(%v): got %d, want %d", tt.scores, got, tt.want)
		}
	}
}
