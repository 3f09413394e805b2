package nn

import (
	"fmt"
	"math"

	"github.com/garb-ml/garb/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class
// classification using the LogSoftmax + NLL decomposition.
//
// Forward:
//
//	loss = mean_n( -log_softmax(logits[n])[label[n]] )
//
// Backward:
//
//	dL/dlogits[n] = (softmax(logits[n]) - one_hot(label[n])) / batch
//
// Logits are expected raw (no softmax applied). The log-sum-exp trick keeps
// the computation stable for large or very negative logits.
type CrossEntropyLoss struct {
	probs   []float32 // softmax probabilities cached for the backward pass
	labels  []int
	batch   int
	classes int
}

// NewCrossEntropyLoss creates a cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean loss over the batch.
//
// logits must have shape [batch, num_classes]; labels must hold one class
// index per batch row.
func (c *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross entropy: logits must be 2D [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross entropy: %d labels for batch of %d", len(labels), batch))
	}

	c.batch = batch
	c.classes = classes
	c.labels = labels
	c.probs = make([]float32, batch*classes)

	logitsData := logits.Data()
	total := float32(0)

	for n := 0; n < batch; n++ {
		row := logitsData[n*classes : (n+1)*classes]
		logProbs := logSoftmax(row)

		label := labels[n]
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("cross entropy: label %d out of range [0, %d)", label, classes))
		}
		total += -logProbs[label]

		probsRow := c.probs[n*classes : (n+1)*classes]
		for i, lp := range logProbs {
			probsRow[i] = float32(math.Exp(float64(lp)))
		}
	}

	return total / float32(batch)
}

// Backward returns the gradient of the mean loss w.r.t. the logits.
func (c *CrossEntropyLoss) Backward() *tensor.Tensor {
	if c.probs == nil {
		panic("cross entropy: Backward called before Forward")
	}

	grad := tensor.New(tensor.Shape{c.batch, c.classes})
	gData := grad.Data()
	scale := 1.0 / float32(c.batch)

	for n := 0; n < c.batch; n++ {
		label := c.labels[n]
		for i := 0; i < c.classes; i++ {
			g := c.probs[n*c.classes+i]
			if i == label {
				g -= 1.0
			}
			gData[n*c.classes+i] = g * scale
		}
	}
	return grad
}

// logSoftmax computes log(softmax(z)) with the log-sum-exp trick.
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(Σ exp(z - max(z))))
func logSoftmax(z []float32) []float32 {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := float32(0)
	for _, v := range z {
		sumExp += float32(math.Exp(float64(v - maxZ)))
	}
	logSumExp := maxZ + float32(math.Log(float64(sumExp)))

	out := make([]float32, len(z))
	for i, v := range z {
		out[i] = v - logSumExp
	}
	return out
}

// Argmax returns the index of the maximum score.
func Argmax(scores []float32) int {
	best := 0
	for i, v := range scores[1:] {
		if v > scores[best] {
			best = i + 1
		}
	}
	return best
}
