package ml

import (
	"math"
	"math/rand"
	"sort"
)

// treeConfig controls how a single decision tree is grown.
type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	featuresPerSplit int // number of features considered per split
}

// treeNode is one node of a CART-style decision tree. Internal nodes route
// on feature <= threshold; leaves carry the majority class.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	class     int
}

// decisionTree is one fitted tree of the forest.
type decisionTree struct {
	root       *treeNode
	numClasses int
}

// predict walks the tree for one feature vector.
func (t *decisionTree) predict(x []float64) int {
	node := t.root
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.class
}

// growTree fits a tree on the samples selected by idx. The rng drives the
// per-split feature subsampling; passing the forest's single seeded source
// keeps training fully deterministic.
func growTree(X [][]float64, y []int, idx []int, numClasses int, cfg treeConfig, rng *rand.Rand) *decisionTree {
	return &decisionTree{
		root:       growNode(X, y, idx, numClasses, cfg, rng, 0),
		numClasses: numClasses,
	}
}

func growNode(X [][]float64, y []int, idx []int, numClasses int, cfg treeConfig, rng *rand.Rand, depth int) *treeNode {
	counts := classCounts(y, idx, numClasses)
	majority := argmax(counts)

	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || isPure(counts) {
		return &treeNode{leaf: true, class: majority}
	}

	feature, threshold, ok := bestSplit(X, y, idx, numClasses, cfg, rng)
	if !ok {
		return &treeNode{leaf: true, class: majority}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return &treeNode{leaf: true, class: majority}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growNode(X, y, leftIdx, numClasses, cfg, rng, depth+1),
		right:     growNode(X, y, rightIdx, numClasses, cfg, rng, depth+1),
	}
}

// bestSplit searches a random feature subset for the threshold with the
// lowest weighted Gini impurity. Candidate thresholds are midpoints between
// consecutive distinct values.
func bestSplit(X [][]float64, y []int, idx []int, numClasses int, cfg treeConfig, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(X[idx[0]])
	features := sampleFeatures(numFeatures, cfg.featuresPerSplit, rng)

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	values := make([]float64, 0, len(idx))
	for _, f := range features {
		values = values[:0]
		for _, i := range idx {
			values = append(values, X[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			leftCounts := make([]int, numClasses)
			rightCounts := make([]int, numClasses)
			leftN, rightN := 0, 0
			for _, i := range idx {
				if X[i][f] <= threshold {
					leftCounts[y[i]]++
					leftN++
				} else {
					rightCounts[y[i]]++
					rightN++
				}
			}

			total := float64(leftN + rightN)
			gini := float64(leftN)/total*giniImpurity(leftCounts, leftN) +
				float64(rightN)/total*giniImpurity(rightCounts, rightN)

			if gini < bestGini {
				bestGini = gini
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// sampleFeatures draws k distinct feature indices without replacement.
func sampleFeatures(n, k int, rng *rand.Rand) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func classCounts(y []int, idx []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func giniImpurity(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// argmax returns the index of the largest count; ties resolve to the lowest
// index, which keeps voting deterministic.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
