package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// A linearly separable two-class problem: class 1 iff the first feature
// crosses 50. Easy enough that a forest must learn it perfectly.
func separableData() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		v := float64(i) * 2 // 0..78
		X = append(X, []float64{v, 100 - v})
		if v >= 50 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func TestTrainForest_LearnsSeparableProblem(t *testing.T) {
	X, y := separableData()
	forest, err := TrainForest(X, y, 2, DefaultForestConfig())
	require.NoError(t, err)

	for i, x := range X {
		assert.Equal(t, y[i], forest.Predict(x), "row %d", i)
	}

	assert.Equal(t, 0, forest.Predict([]float64{10, 90}))
	assert.Equal(t, 1, forest.Predict([]float64{70, 30}))
}

func TestTrainForest_DeterministicForFixedSeed(t *testing.T) {
	X, y := separableData()
	cfg := DefaultForestConfig()
	cfg.Trees = 25

	a, err := TrainForest(X, y, 2, cfg)
	require.NoError(t, err)
	b, err := TrainForest(X, y, 2, cfg)
	require.NoError(t, err)

	probes := [][]float64{
		{5, 95}, {25, 75}, {49, 51}, {51, 49}, {65, 35}, {79, 21},
	}
	for _, p := range probes {
		assert.Equal(t, a.Predict(p), b.Predict(p), "probe %v", p)
	}
}

func TestTrainForest_DimensionsExposed(t *testing.T) {
	X, y := separableData()
	forest, err := TrainForest(X, y, 2, DefaultForestConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, forest.NumFeatures())
	assert.Equal(t, 2, forest.NumClasses())
}

func TestTrainForest_RejectsEmptyData(t *testing.T) {
	_, err := TrainForest(nil, nil, 2, DefaultForestConfig())
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))
}

func TestTrainForest_RejectsMismatchedRows(t *testing.T) {
	_, err := TrainForest([][]float64{{1, 2}}, []int{0, 1}, 2, DefaultForestConfig())
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))
}

func TestTrainForest_RejectsZeroTrees(t *testing.T) {
	X, y := separableData()
	cfg := DefaultForestConfig()
	cfg.Trees = 0

	_, err := TrainForest(X, y, 2, cfg)
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))
}
