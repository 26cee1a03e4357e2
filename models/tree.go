package models

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// treeNode is one node of a classification tree. Leaves carry a class
// distribution so ensembles can average probabilities.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	dist      []float64 // leaf class distribution, nil for internal nodes
}

func (n *treeNode) isLeaf() bool { return n.dist != nil }

// cartConfig controls tree growth. Random forests subsample features per
// split; extremely randomized trees additionally draw the threshold at
// random instead of scanning candidate splits.
type cartConfig struct {
	maxDepth         int // 0 means unlimited
	minSamplesSplit  int
	maxFeatures      int // 0 means all features
	randomThresholds bool
	rng              *rand.Rand
}

// growTree recursively builds a CART tree minimizing weighted Gini impurity.
// rows indexes into X and y; weights are per-sample.
func growTree(X *mat.Dense, y []int, weights []float64, classIndex map[int]int,
	rows []int, depth int, cfg cartConfig) *treeNode {

	nClasses := len(classIndex)
	dist := make([]float64, nClasses)
	var total float64
	for _, i := range rows {
		dist[classIndex[y[i]]] += weights[i]
		total += weights[i]
	}
	for ci := range dist {
		dist[ci] /= total
	}

	if len(rows) < cfg.minSamplesSplit ||
		(cfg.maxDepth > 0 && depth >= cfg.maxDepth) ||
		giniOf(dist) == 0 {
		return &treeNode{dist: dist}
	}

	feature, threshold, ok := bestSplit(X, y, weights, classIndex, rows, cfg)
	if !ok {
		return &treeNode{dist: dist}
	}

	var left, right []int
	for _, i := range rows {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{dist: dist}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, weights, classIndex, left, depth+1, cfg),
		right:     growTree(X, y, weights, classIndex, right, depth+1, cfg),
	}
}

func giniOf(dist []float64) float64 {
	g := 1.0
	for _, p := range dist {
		g -= p * p
	}
	return g
}

// bestSplit scans candidate features for the split with the lowest weighted
// child impurity. With randomThresholds set, one threshold per feature is
// drawn uniformly between the feature's min and max over rows.
func bestSplit(X *mat.Dense, y []int, weights []float64, classIndex map[int]int,
	rows []int, cfg cartConfig) (int, float64, bool) {

	_, nFeatures := X.Dims()
	features := make([]int, nFeatures)
	for j := range features {
		features[j] = j
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < nFeatures {
		cfg.rng.Shuffle(nFeatures, func(a, b int) {
			features[a], features[b] = features[b], features[a]
		})
		features = features[:cfg.maxFeatures]
	}

	nClasses := len(classIndex)
	bestImp := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, j := range features {
		if cfg.randomThresholds {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, i := range rows {
				v := X.At(i, j)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			if hi <= lo {
				continue
			}
			threshold := lo + cfg.rng.Float64()*(hi-lo)
			imp := splitImpurity(X, y, weights, classIndex, rows, j, threshold, nClasses)
			if imp < bestImp {
				bestImp = imp
				bestFeature, bestThreshold = j, threshold
			}
			continue
		}

		// Exhaustive scan over midpoints of sorted distinct values.
		vals := make([]float64, len(rows))
		for k, i := range rows {
			vals[k] = X.At(i, j)
		}
		sort.Float64s(vals)
		for k := 1; k < len(vals); k++ {
			if vals[k] == vals[k-1] {
				continue
			}
			threshold := (vals[k] + vals[k-1]) / 2
			imp := splitImpurity(X, y, weights, classIndex, rows, j, threshold, nClasses)
			if imp < bestImp {
				bestImp = imp
				bestFeature, bestThreshold = j, threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func splitImpurity(X *mat.Dense, y []int, weights []float64, classIndex map[int]int,
	rows []int, feature int, threshold float64, nClasses int) float64 {

	leftDist := make([]float64, nClasses)
	rightDist := make([]float64, nClasses)
	var leftW, rightW float64
	for _, i := range rows {
		ci := classIndex[y[i]]
		if X.At(i, feature) <= threshold {
			leftDist[ci] += weights[i]
			leftW += weights[i]
		} else {
			rightDist[ci] += weights[i]
			rightW += weights[i]
		}
	}
	if leftW == 0 || rightW == 0 {
		return math.Inf(1)
	}
	for ci := range leftDist {
		leftDist[ci] /= leftW
		rightDist[ci] /= rightW
	}
	total := leftW + rightW
	return (leftW/total)*giniOf(leftDist) + (rightW/total)*giniOf(rightDist)
}

// treePredictDist walks the tree to the leaf distribution for one row.
func treePredictDist(n *treeNode, row []float64) []float64 {
	for !n.isLeaf() {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.dist
}

// DecisionTree is a single CART classifier.
type DecisionTree struct {
	state *model.StateManager

	maxDepth        int
	minSamplesSplit int
	seed            int
	classWeight     string

	root      *treeNode
	classes   []int
	nFeatures int
}

// NewDecisionTree creates an unfitted CART classifier.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{
		state:           model.NewStateManager(),
		minSamplesSplit: 2,
		seed:            42,
	}
}

// Name implements Classifier.
func (d *DecisionTree) Name() string { return "Decision Tree" }

// SetClassWeight implements ClassWeighted.
func (d *DecisionTree) SetClassWeight(mode string) { d.classWeight = mode }

// Fit grows the tree on the full training set.
func (d *DecisionTree) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("DecisionTree.Fit", X, y); err != nil {
		return err
	}
	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	d.nFeatures = nFeatures
	d.classes = uniqueClasses(y)

	classIndex := make(map[int]int, len(d.classes))
	for ci, c := range d.classes {
		classIndex[c] = ci
	}
	weights := balancedWeights(y, d.classWeight)
	rows := make([]int, nSamples)
	for i := range rows {
		rows[i] = i
	}

	d.root = growTree(Xd, y, weights, classIndex, rows, 0, cartConfig{
		maxDepth:        d.maxDepth,
		minSamplesSplit: d.minSamplesSplit,
		rng:             rand.New(rand.NewPCG(uint64(d.seed), uint64(d.seed))),
	})

	d.state.SetDimensions(nFeatures, nSamples)
	d.state.SetFitted()
	return nil
}

// Predict returns the majority class of the reached leaf per row.
func (d *DecisionTree) Predict(X mat.Matrix) ([]int, error) {
	proba, err := d.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = d.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// PredictProba returns the leaf class distribution per row.
func (d *DecisionTree) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !d.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "PredictProba")
	}
	if err := checkPredict("DecisionTree.PredictProba", X, d.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(d.classes), nil)
	for i := 0; i < r; i++ {
		dist := treePredictDist(d.root, Xd.RawRowView(i))
		for ci, p := range dist {
			proba.Set(i, ci, p)
		}
	}
	return proba, nil
}

// Classes implements ProbabilityClassifier.
func (d *DecisionTree) Classes() []int { return append([]int(nil), d.classes...) }

// GetParams implements Classifier.
func (d *DecisionTree) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         d.maxDepth,
		"min_samples_split": d.minSamplesSplit,
		"random_state":      d.seed,
		"class_weight":      d.classWeight,
	}
}

// SetParams implements Classifier.
func (d *DecisionTree) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "max_depth":
			v, ok := paramInt(value)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative integer", value)
			}
			d.maxDepth = v
		case "min_samples_split":
			v, ok := paramInt(value)
			if !ok || v < 2 {
				return errors.NewValidationError(key, "must be an integer of at least 2", value)
			}
			d.minSamplesSplit = v
		case "random_state":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			d.seed = v
		case "class_weight":
			str, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			d.classWeight = str
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
