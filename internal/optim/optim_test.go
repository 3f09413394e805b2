package optim

import (
	"math"
	"testing"

	"github.com/garb-ml/garb/internal/nn"
	"github.com/garb-ml/garb/internal/tensor"
)

func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func newParam(t *testing.T, value, grad float32) *nn.Parameter {
	t.Helper()
	p := nn.NewParameter("x", tensor.FromSlice([]float32{value}, tensor.Shape{1}))
	p.Grad().Data()[0] = grad
	return p
}

func TestSGD_SimpleUpdate(t *testing.T) {
	p := newParam(t, 2.0, 1.0)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.Step()

	// x_new = 2.0 - 0.1*1.0 = 1.9
	if got := p.Tensor().Data()[0]; !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want 1.9", got)
	}
}

func TestSGD_WithMomentum(t *testing.T) {
	p := newParam(t, 1.0, 1.0)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1.0, x = 1.0 - 0.1*1.0 = 0.9
	opt.Step()
	if got := p.Tensor().Data()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Fatalf("step 1: got %f, want 0.9", got)
	}

	// Step 2 with the same gradient: v = 0.9*1.0 + 1.0 = 1.9,
	// x = 0.9 - 0.1*1.9 = 0.71
	p.Grad().Data()[0] = 1.0
	opt.Step()
	if got := p.Tensor().Data()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("step 2: got %f, want 0.71", got)
	}
}

func TestSGD_ZeroGrad(t *testing.T) {
	p := newParam(t, 1.0, 5.0)
	opt := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	opt.ZeroGrad()
	if got := p.Grad().Data()[0]; got != 0 {
		t.Errorf("grad after ZeroGrad: got %f, want 0", got)
	}
}

func TestAdam_FirstStep(t *testing.T) {
	p := newParam(t, 1.0, 0.5)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})

	opt.Step()

	// On the first step the bias-corrected moments reduce to
	// m_hat = g and v_hat = g², so the update is
	// x -= lr * g / (|g| + eps) ≈ lr.
	want := float32(1.0 - 0.001)
	if got := p.Tensor().Data()[0]; !floatEqual(got, want, 1e-5) {
		t.Errorf("Adam first step: got %f, want %f", got, want)
	}
}

func TestAdam_Defaults(t *testing.T) {
	opt := NewAdam(nil, AdamConfig{})
	if got := opt.LR(); got != 0.001 {
		t.Errorf("default LR: got %f, want 0.001", got)
	}
	if opt.beta1 != 0.9 || opt.beta2 != 0.999 {
		t.Errorf("default betas: got (%f, %f), want (0.9, 0.999)", opt.beta1, opt.beta2)
	}
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = x² from x=3. The gradient is 2x.
	p := newParam(t, 3.0, 0)
	opt := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.1})

	for i := 0; i < 200; i++ {
		opt.ZeroGrad()
		x := p.Tensor().Data()[0]
		p.Grad().Data()[0] = 2 * x
		opt.Step()
	}

	// Adam behaves like sign descent near the optimum, so the iterate
	// oscillates within roughly one learning-rate step of zero.
	if got := float64(p.Tensor().Data()[0]); math.Abs(got) > 0.3 {
		t.Errorf("Adam did not converge: x = %f", got)
	}
}
