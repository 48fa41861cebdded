package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ForestConfig controls random-forest training.
type ForestConfig struct {
	// Trees is the ensemble size.
	Trees int

	// MaxDepth limits tree depth.
	MaxDepth int

	// MinSamplesSplit is the minimum node size that may still split.
	MinSamplesSplit int

	// Seed drives bootstrap sampling and feature subsampling. Trees are
	// grown sequentially from a single source, so the same seed over the
	// same data always yields the same forest.
	Seed int64
}

// DefaultForestConfig returns sensible defaults for small tabular datasets.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           100,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FOREST
// ══════════════════════════════════════════════════════════════════════════════

// Forest is an ensemble of decision trees combined by majority vote.
// Immutable after training and safe for concurrent prediction.
type Forest struct {
	trees       []*decisionTree
	numClasses  int
	numFeatures int
}

// TrainForest fits a random forest on the encoded dataset. Each tree is
// grown on a bootstrap sample with sqrt(numFeatures) features considered
// per split.
func TrainForest(X [][]float64, y []int, numClasses int, cfg ForestConfig) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, shared.NewDomainError("ml", "TrainForest", shared.ErrDataset,
			fmt.Sprintf("inconsistent training data: %d feature rows, %d labels", len(X), len(y)))
	}
	if cfg.Trees <= 0 {
		return nil, shared.NewDomainError("ml", "TrainForest", shared.ErrDataset,
			"forest must have at least one tree")
	}

	numFeatures := len(X[0])
	rng := rand.New(rand.NewSource(cfg.Seed))

	treeCfg := treeConfig{
		maxDepth:         cfg.MaxDepth,
		minSamplesSplit:  cfg.MinSamplesSplit,
		featuresPerSplit: int(math.Max(1, math.Round(math.Sqrt(float64(numFeatures))))),
	}

	trees := make([]*decisionTree, cfg.Trees)
	idx := make([]int, len(X))
	for t := 0; t < cfg.Trees; t++ {
		// Bootstrap: sample with replacement up to the dataset size.
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		trees[t] = growTree(X, y, idx, numClasses, treeCfg, rng)
	}

	return &Forest{
		trees:       trees,
		numClasses:  numClasses,
		numFeatures: numFeatures,
	}, nil
}

// Predict returns the majority-vote class code for one feature vector.
// Ties resolve to the lowest code.
func (f *Forest) Predict(x []float64) int {
	votes := make([]int, f.numClasses)
	for _, tree := range f.trees {
		votes[tree.predict(x)]++
	}
	return argmax(votes)
}

// NumFeatures returns the width of the feature schema the forest was fit on.
func (f *Forest) NumFeatures() int {
	return f.numFeatures
}

// NumClasses returns the number of label classes the forest votes over.
func (f *Forest) NumClasses() int {
	return f.numClasses
}
