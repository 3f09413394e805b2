package optim

import "github.com/garb-ml/garb/internal/nn"

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param -= lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param   -= lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities [][]float32 // lazily allocated per parameter
}

// SGDConfig holds SGD hyperparameters.
type SGDConfig struct {
	LR       float32 // learning rate (default 0.01)
	Momentum float32 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([][]float32, len(params)),
	}
}

// Step applies one SGD update to every parameter.
func (s *SGD) Step() {
	for i, param := range s.params {
		gradData := param.Grad().Data()
		paramData := param.Tensor().Data()

		if s.momentum == 0 {
			for j, g := range gradData {
				paramData[j] -= s.lr * g
			}
			continue
		}

		v := s.velocities[i]
		if v == nil {
			v = make([]float32, len(paramData))
			s.velocities[i] = v
		}
		for j, g := range gradData {
			v[j] = s.momentum*v[j] + g
			paramData[j] -= s.lr * v[j]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
