package ml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/performance-hub/internal/domain/metrics"
	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// trainingCSV builds a dataset where heavy study and attendance mean Good
// and the opposite means Poor, so a trained model is actually usable in
// assertions.
func trainingCSV(rows int) string {
	var b strings.Builder
	b.WriteString(datasetHeader + "\n")
	for i := 0; i < rows; i++ {
		if i%2 == 0 {
			b.WriteString("240,120,8,95,Yes,300,1,60,Yes,Good\n")
		} else {
			b.WriteString("30,540,4.5,50,No,20,9,5,No,Poor\n")
		}
	}
	return b.String()
}

func loadTrainingSet(t *testing.T, rows int) *Dataset {
	t.Helper()
	ds, err := ReadCSV(strings.NewReader(trainingCSV(rows)))
	require.NoError(t, err)
	return ds
}

func TestTrain_ProducesWorkingModel(t *testing.T) {
	ds := loadTrainingSet(t, 60)

	model, err := Train(ds, DefaultTrainerConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 48, model.TrainRows)
	assert.Equal(t, 12, model.HoldoutRows)
	assert.Equal(t, []string{"Good", "Poor"}, model.Codec().Labels())
	// The two clusters are far apart; holdout accuracy must be perfect.
	assert.Equal(t, 1.0, model.Accuracy)
	assert.False(t, model.TrainedAt.IsZero())
}

func TestTrain_DeterministicForFixedSeed(t *testing.T) {
	ds := loadTrainingSet(t, 40)
	cfg := DefaultTrainerConfig()
	cfg.Forest.Trees = 20

	a, err := Train(ds, cfg, nil)
	require.NoError(t, err)
	b, err := Train(ds, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Accuracy, b.Accuracy)
	assert.Equal(t, a.TrainRows, b.TrainRows)

	probe := metrics.FeatureVector{200, 150, 7.5, 90, 1, 250, 2, 50, 1}
	pa := NewFittedPredictor(a)
	pb := NewFittedPredictor(b)
	la, err := pa.Predict(probe)
	require.NoError(t, err)
	lb, err := pb.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, la, lb)
}

func TestTrain_EmptyDatasetFails(t *testing.T) {
	_, err := Train(&Dataset{}, DefaultTrainerConfig(), nil)
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))

	_, err = Train(nil, DefaultTrainerConfig(), nil)
	assert.Error(t, err)
}

func TestTrain_SingleClassFails(t *testing.T) {
	ds := &Dataset{
		Features: [][]float64{{1, 2, 3, 4, 5, 6, 7, 8, 9}, {9, 8, 7, 6, 5, 4, 3, 2, 1}},
		Labels:   []string{"Good", "Good"},
	}

	_, err := Train(ds, DefaultTrainerConfig(), nil)
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))
}

func TestPredictor_UnfittedFails(t *testing.T) {
	p := NewPredictor()
	assert.False(t, p.Ready())

	_, err := p.Predict(metrics.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.Error(t, err)
	assert.True(t, shared.IsUnfittedModel(err))
}

func TestPredictor_SwapPublishesModel(t *testing.T) {
	ds := loadTrainingSet(t, 40)
	model, err := Train(ds, DefaultTrainerConfig(), nil)
	require.NoError(t, err)

	p := NewPredictor()
	p.Swap(model)

	assert.True(t, p.Ready())
	assert.Same(t, model, p.Current())

	label, err := p.Predict(metrics.FeatureVector{240, 120, 8, 95, 1, 300, 1, 60, 1})
	require.NoError(t, err)
	assert.Equal(t, "Good", label)

	label, err = p.Predict(metrics.FeatureVector{30, 540, 4.5, 50, 0, 20, 9, 5, 0})
	require.NoError(t, err)
	assert.Equal(t, "Poor", label)
}

func TestPredictor_WrongVectorWidthFails(t *testing.T) {
	ds := loadTrainingSet(t, 40)
	model, err := Train(ds, DefaultTrainerConfig(), nil)
	require.NoError(t, err)

	p := NewFittedPredictor(model)
	_, err = p.Predict(metrics.FeatureVector{1, 2, 3})
	require.Error(t, err)
	assert.True(t, shared.IsInvalidValue(err))
}
