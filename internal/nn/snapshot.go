package nn

import (
	"errors"
	"fmt"

	"github.com/garb-ml/garb/internal/tensor"
)

// ErrShapeMismatch is returned when a snapshot's structure does not match
// the model it is being restored into.
var ErrShapeMismatch = errors.New("nn: snapshot shape mismatch")

// Snapshot is an immutable deep copy of a parameter set at a point in time.
//
// The copy is taken at construction, so later in-place updates to the live
// parameters (optimizer steps) never leak into an existing snapshot. This
// is the invariant the trainer's best-checkpoint retention depends on.
type Snapshot struct {
	names   []string
	tensors []*tensor.Tensor
}

// TakeSnapshot deep-copies the given parameters.
func TakeSnapshot(params []*Parameter) *Snapshot {
	s := &Snapshot{
		names:   make([]string, len(params)),
		tensors: make([]*tensor.Tensor, len(params)),
	}
	for i, p := range params {
		s.names[i] = p.Name()
		s.tensors[i] = p.Tensor().Clone()
	}
	return s
}

// Restore overwrites the given parameters in place from the snapshot.
//
// The snapshot must have been taken from a structurally identical parameter
// set: same count, same order, same shapes. Any mismatch fails with
// ErrShapeMismatch before any parameter is modified.
func (s *Snapshot) Restore(params []*Parameter) error {
	if len(params) != len(s.tensors) {
		return fmt.Errorf("%w: snapshot has %d parameters, model has %d",
			ErrShapeMismatch, len(s.tensors), len(params))
	}
	for i, p := range params {
		if !p.Tensor().Shape().Equal(s.tensors[i].Shape()) {
			return fmt.Errorf("%w: parameter %q is %v in snapshot, %v in model",
				ErrShapeMismatch, s.names[i], s.tensors[i].Shape(), p.Tensor().Shape())
		}
	}
	for i, p := range params {
		// Shapes already validated, CopyFrom cannot fail here.
		if err := p.Tensor().CopyFrom(s.tensors[i]); err != nil {
			return err
		}
	}
	return nil
}

// NumParameters returns the number of parameter tensors in the snapshot.
func (s *Snapshot) NumParameters() int {
	return len(s.tensors)
}
