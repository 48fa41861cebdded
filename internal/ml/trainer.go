package ml

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/studypulse/performance-hub/internal/domain/shared"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// TrainerConfig controls the train/holdout split and the forest.
type TrainerConfig struct {
	// HoldoutFraction is the share of the dataset withheld from fitting
	// and used only to measure accuracy.
	HoldoutFraction float64

	// Seed drives the split shuffle. Together with Forest.Seed it makes
	// training fully reproducible over the same dataset.
	Seed int64

	// Forest is the classifier configuration.
	Forest ForestConfig
}

// DefaultTrainerConfig returns the standard 80/20 split with fixed seeds.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		HoldoutFraction: 0.2,
		Seed:            42,
		Forest:          DefaultForestConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MODEL
// ══════════════════════════════════════════════════════════════════════════════

// Model is the trained artifact: classifier plus label codec. Immutable
// after training; replaced wholesale (never mutated) on retraining.
type Model struct {
	forest *Forest
	codec  *LabelCodec

	// Accuracy is the holdout accuracy measured at training time.
	Accuracy float64

	// TrainedAt is when training completed.
	TrainedAt time.Time

	// TrainRows and HoldoutRows record the partition sizes.
	TrainRows   int
	HoldoutRows int
}

// Codec returns the model's label codec.
func (m *Model) Codec() *LabelCodec {
	return m.codec
}

// ══════════════════════════════════════════════════════════════════════════════
// TRAINING
// ══════════════════════════════════════════════════════════════════════════════

// Train fits a random forest on the historical dataset: encode labels,
// shuffle-split into training and holdout partitions, fit on the training
// partition, then log (not return) the holdout accuracy. Runs once at
// process start and blocks readiness until complete.
//
// Fails with a DatasetError kind when the dataset is empty or has fewer
// than two distinct labels.
func Train(ds *Dataset, cfg TrainerConfig, log *logger.Logger) (*Model, error) {
	if log == nil {
		log = logger.Default()
	}
	if ds == nil || ds.Rows() == 0 {
		return nil, shared.NewDomainError("ml", "Train", shared.ErrDataset,
			"dataset contains no records")
	}

	codec, err := FitLabelCodec(ds.Labels)
	if err != nil {
		return nil, err
	}

	encoded := make([]int, ds.Rows())
	for i, label := range ds.Labels {
		code, ok := codec.Encode(label)
		if !ok {
			// Unreachable: the codec was fit over these very labels.
			return nil, shared.NewDomainError("ml", "Train", shared.ErrDataset,
				fmt.Sprintf("label %q missing from fitted codec", label))
		}
		encoded[i] = code
	}

	// Reproducible shuffle-split: same dataset + same seed = same partitions.
	perm := rand.New(rand.NewSource(cfg.Seed)).Perm(ds.Rows())
	holdoutSize := int(float64(ds.Rows()) * cfg.HoldoutFraction)
	if holdoutSize >= ds.Rows() {
		holdoutSize = ds.Rows() - 1
	}
	trainIdx := perm[:ds.Rows()-holdoutSize]
	holdoutIdx := perm[ds.Rows()-holdoutSize:]

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = ds.Features[idx]
		trainY[i] = encoded[idx]
	}

	start := time.Now()
	forest, err := TrainForest(trainX, trainY, codec.NumClasses(), cfg.Forest)
	if err != nil {
		return nil, err
	}

	model := &Model{
		forest:      forest,
		codec:       codec,
		TrainedAt:   time.Now().UTC(),
		TrainRows:   len(trainIdx),
		HoldoutRows: len(holdoutIdx),
	}

	// Holdout accuracy is reported through the log, not the return value.
	if len(holdoutIdx) > 0 {
		correct := 0
		for _, idx := range holdoutIdx {
			if forest.Predict(ds.Features[idx]) == encoded[idx] {
				correct++
			}
		}
		model.Accuracy = float64(correct) / float64(len(holdoutIdx))
	}

	log.Info("model training completed",
		logger.Int("train_rows", model.TrainRows),
		logger.Int("holdout_rows", model.HoldoutRows),
		logger.Int("classes", codec.NumClasses()),
		logger.Int("trees", cfg.Forest.Trees),
		logger.Accuracy(model.Accuracy),
		logger.Duration("elapsed", time.Since(start)),
	)

	return model, nil
}
