// Package trainer drives gradient-based optimization of a classifier with
// early stopping and validation-driven best-checkpoint retention.
//
// One run is a plain sequential state machine: RUNNING batches interleaved
// with periodic CHECKPOINT_EVAL passes over the validation split, until
// either the patience budget of non-improving checkpoints is spent
// (STOPPED_BY_PATIENCE) or the epoch cap is reached
// (STOPPED_BY_MAX_EPOCHS). Whatever ends the run, the model's live
// parameters are restored from the best snapshot seen, so the returned
// model never regresses below the best validation accuracy observed.
package trainer

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/garb-ml/garb/internal/dataset"
	"github.com/garb-ml/garb/internal/eval"
	"github.com/garb-ml/garb/internal/nn"
	"github.com/garb-ml/garb/internal/optim"
	"github.com/garb-ml/garb/internal/tensor"
)

// evalBatchSize is the batch size used for validation passes. Larger than
// the training batch size since no gradients are computed.
const evalBatchSize = 256

// Model is the trainable-model capability set the trainer requires.
type Model interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
	Backward(grad *tensor.Tensor)
	Parameters() []*nn.Parameter
	State() *nn.Snapshot
	Load(s *nn.Snapshot) error
}

// StopReason names the terminal state of a run.
type StopReason int

const (
	// StoppedByPatience: the configured number of consecutive
	// non-improving checkpoints was reached.
	StoppedByPatience StopReason = iota + 1
	// StoppedByMaxEpochs: the epoch cap was exhausted first.
	StoppedByMaxEpochs
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StoppedByPatience:
		return "patience"
	case StoppedByMaxEpochs:
		return "max_epochs"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Config holds the hyperparameters of one training run.
type Config struct {
	MaxEpochs  int   // hard cap on outer loop iterations
	BatchSize  int   // samples per gradient step
	Patience   int   // consecutive non-improving checkpoints tolerated
	CheckEvery int   // batches between validation checkpoints
	Seed       int64 // seed for shuffling order
}

// Validate verifies the configuration is runnable.
func (c Config) Validate() error {
	if c.MaxEpochs <= 0 {
		return fmt.Errorf("trainer: max epochs must be positive, got %d", c.MaxEpochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("trainer: batch size must be positive, got %d", c.BatchSize)
	}
	if c.Patience <= 0 {
		return fmt.Errorf("trainer: patience must be positive, got %d", c.Patience)
	}
	if c.CheckEvery <= 0 {
		return fmt.Errorf("trainer: checkpoint interval must be positive, got %d", c.CheckEvery)
	}
	return nil
}

// Checkpoint records one validation evaluation.
type Checkpoint struct {
	Index     int     // 1-based checkpoint number
	Epoch     int     // epoch the checkpoint occurred in
	Batches   int     // total training batches processed so far
	TrainLoss float64 // mean training loss since the previous checkpoint
	ValAcc    float64 // validation accuracy at this checkpoint, percent
	BestSoFar float64 // best validation accuracy up to and including this checkpoint
	Improved  bool
}

// Result is the outcome of a run. The model passed to Train holds the
// best-checkpoint parameters when Train returns.
type Result struct {
	BestValAcc float64 // percent, equals the restored model's validation accuracy
	StopReason StopReason
	Epochs     int // epochs entered (the last may be partial on early stop)
	History    []Checkpoint
}

// Train runs gradient-based optimization of model over the training split
// with early stopping against the validation split.
//
// All collaborators arrive as explicit arguments; the trainer owns no
// global state and performs no I/O beyond progress logs. On return, the
// model's live parameters are the best snapshot observed and
// Result.BestValAcc is that snapshot's validation accuracy.
func Train(
	cfg Config,
	model Model,
	opt optim.Optimizer,
	loss *nn.CrossEntropyLoss,
	trainSplit, valSplit *dataset.Split,
) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainLoader, err := dataset.NewLoader(trainSplit, cfg.BatchSize, true, rng)
	if err != nil {
		return Result{}, fmt.Errorf("trainer: training split: %w", err)
	}
	valLoader, err := dataset.NewLoader(valSplit, evalBatchSize, false, nil)
	if err != nil {
		return Result{}, fmt.Errorf("trainer: validation split: %w", err)
	}

	// Training state, owned exclusively by this run.
	bestValAcc := 0.0
	bestSnapshot := model.State()
	noImprove := 0

	result := Result{}
	totalBatches := 0
	sinceCheck := 0
	lossSum := 0.0

	stopped := false

epochs:
	for epoch := 1; epoch <= cfg.MaxEpochs; epoch++ {
		result.Epochs = epoch

		for _, batch := range trainLoader.Batches() {
			opt.ZeroGrad()
			scores := model.Forward(batch.Images)
			batchLoss := loss.Forward(scores, batch.Labels)
			model.Backward(loss.Backward())
			opt.Step()

			totalBatches++
			sinceCheck++
			lossSum += float64(batchLoss)

			if sinceCheck < cfg.CheckEvery {
				continue
			}

			// CHECKPOINT_EVAL: measure validation accuracy and decide
			// whether this is a new best.
			valAcc, err := eval.Accuracy(model, valLoader.Batches())
			if err != nil {
				return Result{}, fmt.Errorf("trainer: checkpoint evaluation: %w", err)
			}

			improved := valAcc > bestValAcc
			if improved {
				bestValAcc = valAcc
				bestSnapshot = model.State()
				noImprove = 0
			} else {
				noImprove++
			}

			cp := Checkpoint{
				Index:     len(result.History) + 1,
				Epoch:     epoch,
				Batches:   totalBatches,
				TrainLoss: lossSum / float64(sinceCheck),
				ValAcc:    valAcc,
				BestSoFar: bestValAcc,
				Improved:  improved,
			}
			result.History = append(result.History, cp)

			log.Info().
				Int("checkpoint", cp.Index).
				Int("epoch", epoch).
				Int("batches", totalBatches).
				Float64("train_loss", cp.TrainLoss).
				Float64("val_acc", valAcc).
				Float64("best_val_acc", bestValAcc).
				Bool("improved", improved).
				Msg("checkpoint")

			sinceCheck = 0
			lossSum = 0

			if noImprove >= cfg.Patience {
				// Abandon the rest of this epoch and all remaining epochs.
				result.StopReason = StoppedByPatience
				stopped = true
				break epochs
			}
		}
	}

	if !stopped {
		result.StopReason = StoppedByMaxEpochs
	}

	// Restore the best snapshot, discarding any parameter drift since the
	// best checkpoint. The returned model must never score below
	// BestValAcc.
	if err := model.Load(bestSnapshot); err != nil {
		return Result{}, fmt.Errorf("trainer: restore best snapshot: %w", err)
	}
	result.BestValAcc = bestValAcc

	log.Info().
		Str("stop_reason", result.StopReason.String()).
		Int("epochs", result.Epochs).
		Int("checkpoints", len(result.History)).
		Float64("best_val_acc", bestValAcc).
		Msg("training finished")

	return result, nil
}
