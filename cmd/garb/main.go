// Command garb trains a small convolutional classifier on Fashion-MNIST
// with early stopping, reports test accuracy and a confusion matrix, and
// optionally classifies a directory of personal photos.
package main

import (
	"flag"
	"math/rand"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/garb-ml/garb/internal/config"
	"github.com/garb-ml/garb/internal/dataset"
	"github.com/garb-ml/garb/internal/eval"
	"github.com/garb-ml/garb/internal/nn"
	"github.com/garb-ml/garb/internal/optim"
	"github.com/garb-ml/garb/internal/photos"
	"github.com/garb-ml/garb/internal/report"
	"github.com/garb-ml/garb/internal/trainer"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (flags override it)")
	dataDir := flag.String("data", "", "directory holding the Fashion-MNIST IDX files")
	photosDir := flag.String("photos", "", "directory of personal photos to classify after training")
	maxEpochs := flag.Int("epochs", 0, "maximum training epochs")
	batchSize := flag.Int("batch", 0, "training batch size")
	patience := flag.Int("patience", 0, "non-improving checkpoints tolerated before stopping")
	checkEvery := flag.Int("check-every", 0, "training batches between validation checkpoints")
	lr := flag.Float64("lr", 0, "Adam learning rate")
	valFraction := flag.Float64("val-fraction", 0, "fraction of the training set held out for validation")
	seed := flag.Int64("seed", 0, "random seed for init and shuffling")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	cfg.ApplyOverrides(config.Overrides{
		DataDir:     *dataDir,
		PhotosDir:   *photosDir,
		MaxEpochs:   *maxEpochs,
		BatchSize:   *batchSize,
		Patience:    *patience,
		CheckEvery:  *checkEvery,
		LR:          *lr,
		ValFraction: *valFraction,
		Seed:        *seed,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func run(cfg *config.Config) error {
	// Download skips files already on disk.
	if err := dataset.Download(cfg.DataDir); err != nil {
		return err
	}

	trainAll, test, err := dataset.Load(cfg.DataDir)
	if err != nil {
		return err
	}
	train, val, err := trainAll.Partition(cfg.ValFraction)
	if err != nil {
		return err
	}
	log.Info().
		Int("train", train.Len()).
		Int("val", val.Len()).
		Int("test", test.Len()).
		Msg("dataset ready")

	rng := rand.New(rand.NewSource(cfg.Seed))
	model, err := nn.NewClassifier(cfg.Model(), rng)
	if err != nil {
		return err
	}
	log.Info().Str("model", model.String()).Int("parameters", model.NumParameters()).Msg("model built")

	opt := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LR})
	result, err := trainer.Train(cfg.Trainer(), model, opt, nn.NewCrossEntropyLoss(), train, val)
	if err != nil {
		return err
	}
	log.Info().
		Float64("best_val_acc", result.BestValAcc).
		Str("stop_reason", result.StopReason.String()).
		Msg("training finished")

	report.Curves(os.Stdout, result.History)

	testLoader, err := dataset.NewLoader(test, 256, false, nil)
	if err != nil {
		return err
	}
	testAcc, err := eval.Accuracy(model, testLoader.Batches())
	if err != nil {
		return err
	}
	log.Info().Float64("test_acc", testAcc).Msg("test set evaluated")

	matrix, err := eval.Confusion(model, testLoader.Batches(), nn.NumClasses)
	if err != nil {
		return err
	}
	report.ConfusionMatrix(os.Stdout, matrix)
	report.ClassSummary(os.Stdout, matrix)

	if cfg.PhotosDir != "" {
		if err := classifyPhotos(cfg, model); err != nil {
			return err
		}
	}
	return nil
}

func classifyPhotos(cfg *config.Config, model *nn.Classifier) error {
	samples, err := photos.LoadDir(cfg.PhotosDir, cfg.InvertPhotos)
	if err != nil {
		return err
	}
	for _, sample := range samples {
		scores := model.Forward(sample.Batch().Images)
		class := nn.Argmax(scores.Data()[:nn.NumClasses])
		log.Info().
			Str("photo", sample.Name).
			Str("class", dataset.Classes[class]).
			Msg("photo classified")
	}
	return nil
}
