package command

import (
	"context"
	"time"

	"github.com/studypulse/performance-hub/internal/ml"
	"github.com/studypulse/performance-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RETRAIN MODEL COMMAND
// Rebuilds the model from the dataset on disk and atomically publishes it.
// In-flight predictions keep using the old model until the swap completes.
// ══════════════════════════════════════════════════════════════════════════════

// RetrainModelCommand triggers a retrain from the configured dataset.
type RetrainModelCommand struct {
	// DatasetPath overrides the configured dataset path when non-empty.
	DatasetPath string
}

// RetrainResultDTO summarizes a completed retrain.
type RetrainResultDTO struct {
	// Accuracy is the holdout accuracy of the new model.
	Accuracy float64 `json:"holdout_accuracy"`

	// TrainRows is the number of rows the model was fitted on.
	TrainRows int `json:"train_rows"`

	// HoldoutRows is the number of rows held out for evaluation.
	HoldoutRows int `json:"holdout_rows"`

	// Labels are the classes the new model predicts.
	Labels []string `json:"labels"`

	// TrainedAt is when training finished.
	TrainedAt time.Time `json:"trained_at"`

	// DurationMS is how long the retrain took, in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// CacheInvalidator drops cached predictions after a model swap.
// Implemented by the Redis prediction cache; nil is a no-op.
type CacheInvalidator interface {
	BumpEpoch()
}

// RetrainModelHandler handles retrain commands.
type RetrainModelHandler struct {
	datasetPath string
	trainerCfg  ml.TrainerConfig
	predictor   *ml.Predictor
	invalidator CacheInvalidator
	logger      *logger.Logger
}

// NewRetrainModelHandler creates the handler bound to a dataset path and
// trainer configuration. Invalidator may be nil.
func NewRetrainModelHandler(
	datasetPath string,
	trainerCfg ml.TrainerConfig,
	predictor *ml.Predictor,
	invalidator CacheInvalidator,
	log *logger.Logger,
) *RetrainModelHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RetrainModelHandler{
		datasetPath: datasetPath,
		trainerCfg:  trainerCfg,
		predictor:   predictor,
		invalidator: invalidator,
		logger:      log,
	}
}

// Handle executes the retrain use case. Any failure leaves the currently
// published model untouched.
func (h *RetrainModelHandler) Handle(ctx context.Context, cmd RetrainModelCommand) (*RetrainResultDTO, error) {
	start := time.Now()

	path := h.datasetPath
	if cmd.DatasetPath != "" {
		path = cmd.DatasetPath
	}

	ds, err := ml.LoadCSV(path)
	if err != nil {
		return nil, err
	}

	model, err := ml.Train(ds, h.trainerCfg, h.logger)
	if err != nil {
		return nil, err
	}

	h.predictor.Swap(model)
	if h.invalidator != nil {
		h.invalidator.BumpEpoch()
	}

	duration := time.Since(start)
	h.logger.Info("model retrained",
		logger.Accuracy(model.Accuracy),
		logger.DatasetRows(ds.Rows()),
		logger.Latency(duration),
	)

	return &RetrainResultDTO{
		Accuracy:    model.Accuracy,
		TrainRows:   model.TrainRows,
		HoldoutRows: model.HoldoutRows,
		Labels:      model.Codec().Labels(),
		TrainedAt:   model.TrainedAt,
		DurationMS:  duration.Milliseconds(),
	}, nil
}
