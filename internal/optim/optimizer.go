// Package optim implements the gradient-descent optimizers used by the
// trainer.
//
// Optimizers hold the parameter list they update. Gradients live on the
// parameters themselves (accumulated by the layers' backward passes), so
// Step takes no arguments: it reads each parameter's gradient buffer and
// updates the data in place.
//
// The trainer treats the adaptive-rate algorithm as a replaceable policy;
// anything satisfying Optimizer can drive a run.
package optim

import "github.com/garb-ml/garb/internal/nn"

// Optimizer updates model parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies one update to every parameter in place.
	Step()

	// ZeroGrad clears all parameter gradients. Call before each
	// forward/backward pass to avoid accumulating across iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
