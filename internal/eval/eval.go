// Package eval computes predictions and aggregate accuracy for a model
// over a batch source.
//
// Evaluation is forward-only: it never mutates parameters or gradients.
// Each function makes exactly one pass over the batches, reading the
// predictions and the ground-truth labels from the same Batch value, so
// correctness does not depend on a batch source replaying in the same
// order twice.
package eval

import (
	"fmt"

	"github.com/garb-ml/garb/internal/dataset"
	"github.com/garb-ml/garb/internal/nn"
	"github.com/garb-ml/garb/internal/tensor"
)

// Model is the inference capability the evaluator needs.
type Model interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
}

// Predict runs forward inference over every batch and returns the per-image
// argmax class ids, in batch order.
func Predict(m Model, batches []dataset.Batch) []int {
	var preds []int
	for _, batch := range batches {
		scores := m.Forward(batch.Images)
		preds = append(preds, argmaxRows(scores)...)
	}
	return preds
}

// Accuracy compares predictions to ground truth over one pass and returns
// the percentage of correct predictions in [0, 100].
//
// Requesting accuracy over zero samples fails with dataset.ErrEmptySplit;
// the average would be undefined.
func Accuracy(m Model, batches []dataset.Batch) (float64, error) {
	correct, total := 0, 0

	for _, batch := range batches {
		scores := m.Forward(batch.Images)
		for i, pred := range argmaxRows(scores) {
			if pred == batch.Labels[i] {
				correct++
			}
			total++
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("eval: accuracy over zero samples: %w", dataset.ErrEmptySplit)
	}
	return 100.0 * float64(correct) / float64(total), nil
}

// Confusion builds a confusion matrix over one pass: rows index the true
// class, columns the predicted class.
func Confusion(m Model, batches []dataset.Batch, numClasses int) ([][]int, error) {
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	total := 0
	for _, batch := range batches {
		scores := m.Forward(batch.Images)
		for i, pred := range argmaxRows(scores) {
			truth := batch.Labels[i]
			if truth < 0 || truth >= numClasses || pred < 0 || pred >= numClasses {
				return nil, fmt.Errorf("eval: class id out of range: truth=%d pred=%d classes=%d",
					truth, pred, numClasses)
			}
			matrix[truth][pred]++
			total++
		}
	}

	if total == 0 {
		return nil, fmt.Errorf("eval: confusion matrix over zero samples: %w", dataset.ErrEmptySplit)
	}
	return matrix, nil
}

// argmaxRows returns the argmax of each row of a [batch, classes] score
// tensor.
func argmaxRows(scores *tensor.Tensor) []int {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("eval: expected 2D scores [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	data := scores.Data()

	preds := make([]int, batch)
	for n := 0; n < batch; n++ {
		preds[n] = nn.Argmax(data[n*classes : (n+1)*classes])
	}
	return preds
}
