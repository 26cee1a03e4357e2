package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/core/parallel"
	"github.com/modelbench/modelbench/pkg/errors"
)

// gbNode is one node of a gradient-boosted regression tree. Leaf values
// are Newton steps, -G/(H+lambda) over the samples reaching the leaf.
type gbNode struct {
	feature   int
	threshold float64
	left      *gbNode
	right     *gbNode
	value     float64
	leaf      bool
}

// gbdtVariant selects how the boosting engine grows its trees.
type gbdtVariant int

const (
	// variantExact scans every distinct threshold with second-order gain.
	variantExact gbdtVariant = iota
	// variantHistogram buckets feature values into bins before scanning.
	variantHistogram
	// variantSymmetric grows oblivious trees, one split shared per level.
	variantSymmetric
)

const histogramBins = 255

// gbdtEngine is shared by the four boosted-tree entries in the catalog.
type gbdtEngine struct {
	state *model.StateManager

	nEstimators  int
	learningRate float64
	maxDepth     int
	lambda       float64 // L2 regularization on leaf values
	variant      gbdtVariant

	// trees[round][class] when multiclass, trees[round][0] when binary.
	trees      [][]*gbNode
	baseScore  []float64
	classes    []int
	nFeatures  int
	multiclass bool
}

func newGBDTEngine(variant gbdtVariant, maxDepth int, lambda float64) gbdtEngine {
	return gbdtEngine{
		state:        model.NewStateManager(),
		nEstimators:  100,
		learningRate: 0.1,
		maxDepth:     maxDepth,
		lambda:       lambda,
		variant:      variant,
	}
}

// fit boosts logistic loss, binary as a single score column and multiclass
// as softmax with one tree per class per round.
func (e *gbdtEngine) fit(op string, X mat.Matrix, y []int) error {
	if err := checkXY(op, X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	e.nFeatures = nFeatures
	e.classes = uniqueClasses(y)
	if len(e.classes) < 2 {
		return errors.NewClassDiversityError("y", len(e.classes))
	}
	e.multiclass = len(e.classes) > 2

	classIndex := make(map[int]int, len(e.classes))
	for ci, c := range e.classes {
		classIndex[c] = ci
	}

	nOutputs := 1
	if e.multiclass {
		nOutputs = len(e.classes)
	}

	// Raw scores per sample and output, started from the log odds of the
	// training distribution.
	scores := make([][]float64, nOutputs)
	e.baseScore = make([]float64, nOutputs)
	if e.multiclass {
		for o := range scores {
			scores[o] = make([]float64, nSamples)
		}
	} else {
		var pos float64
		for _, l := range y {
			if l == e.classes[1] {
				pos++
			}
		}
		p := pos / float64(nSamples)
		e.baseScore[0] = math.Log(p / (1 - p))
		scores[0] = make([]float64, nSamples)
		for i := range scores[0] {
			scores[0][i] = e.baseScore[0]
		}
	}

	rows := make([]int, nSamples)
	for i := range rows {
		rows[i] = i
	}

	e.trees = make([][]*gbNode, 0, e.nEstimators)
	grads := make([][]float64, nOutputs)
	hess := make([][]float64, nOutputs)
	for o := range grads {
		grads[o] = make([]float64, nSamples)
		hess[o] = make([]float64, nSamples)
	}

	for round := 0; round < e.nEstimators; round++ {
		if e.multiclass {
			// Softmax gradients per output.
			for i := 0; i < nSamples; i++ {
				maxScore := scores[0][i]
				for o := 1; o < nOutputs; o++ {
					if scores[o][i] > maxScore {
						maxScore = scores[o][i]
					}
				}
				var sum float64
				probs := make([]float64, nOutputs)
				for o := 0; o < nOutputs; o++ {
					probs[o] = math.Exp(scores[o][i] - maxScore)
					sum += probs[o]
				}
				for o := 0; o < nOutputs; o++ {
					p := probs[o] / sum
					target := 0.0
					if classIndex[y[i]] == o {
						target = 1.0
					}
					grads[o][i] = p - target
					hess[o][i] = p * (1 - p)
				}
			}
		} else {
			for i := 0; i < nSamples; i++ {
				p := sigmoid(scores[0][i])
				target := 0.0
				if y[i] == e.classes[1] {
					target = 1.0
				}
				grads[0][i] = p - target
				hess[0][i] = p * (1 - p)
			}
		}

		roundTrees := make([]*gbNode, nOutputs)
		parallel.ForEach(nOutputs, func(o int) {
			roundTrees[o] = e.buildTree(Xd, rows, grads[o], hess[o], 0)
		})
		e.trees = append(e.trees, roundTrees)

		for o := 0; o < nOutputs; o++ {
			for i := 0; i < nSamples; i++ {
				scores[o][i] += e.learningRate * gbPredictOne(roundTrees[o], Xd.RawRowView(i))
			}
		}
	}

	e.state.SetDimensions(nFeatures, nSamples)
	e.state.SetFitted()
	return nil
}

func (e *gbdtEngine) leafValue(g, h float64) float64 {
	return -g / (h + e.lambda)
}

// buildTree grows one regression tree on gradients and hessians.
func (e *gbdtEngine) buildTree(X *mat.Dense, rows []int, grads, hess []float64, depth int) *gbNode {
	if e.variant == variantSymmetric {
		return e.buildSymmetric(X, rows, grads, hess)
	}

	var gSum, hSum float64
	for _, i := range rows {
		gSum += grads[i]
		hSum += hess[i]
	}

	if depth >= e.maxDepth || len(rows) < 2 {
		return &gbNode{leaf: true, value: e.leafValue(gSum, hSum)}
	}

	feature, threshold, gain := e.bestGBSplit(X, rows, grads, hess, gSum, hSum)
	if gain <= 0 {
		return &gbNode{leaf: true, value: e.leafValue(gSum, hSum)}
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
		return &gbNode{leaf: true, value: e.leafValue(gSum, hSum)}
	}

	return &gbNode{
		feature:   feature,
		threshold: threshold,
		left:      e.buildTree(X, left, grads, hess, depth+1),
		right:     e.buildTree(X, right, grads, hess, depth+1),
	}
}

// bestGBSplit maximizes the second-order gain over candidate thresholds.
// Exact mode scans every boundary between sorted distinct values; histogram
// mode scans bin edges.
func (e *gbdtEngine) bestGBSplit(X *mat.Dense, rows []int, grads, hess []float64,
	gSum, hSum float64) (int, float64, float64) {

	_, nFeatures := X.Dims()
	parentScore := gSum * gSum / (hSum + e.lambda)

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	for j := 0; j < nFeatures; j++ {
		thresholds := e.candidateThresholds(X, rows, j)
		for _, threshold := range thresholds {
			var gl, hl float64
			for _, i := range rows {
				if X.At(i, j) <= threshold {
					gl += grads[i]
					hl += hess[i]
				}
			}
			gr := gSum - gl
			hr := hSum - hl
			if hl == 0 || hr == 0 {
				continue
			}
			gain := gl*gl/(hl+e.lambda) + gr*gr/(hr+e.lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature, bestThreshold = j, threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func (e *gbdtEngine) candidateThresholds(X *mat.Dense, rows []int, feature int) []float64 {
	vals := make([]float64, len(rows))
	for k, i := range rows {
		vals[k] = X.At(i, feature)
	}
	sort.Float64s(vals)

	if e.variant == variantHistogram && len(vals) > histogramBins {
		// Equal-frequency bin edges keep skewed features well resolved.
		out := make([]float64, 0, histogramBins)
		step := float64(len(vals)) / float64(histogramBins+1)
		for b := 1; b <= histogramBins; b++ {
			idx := int(float64(b) * step)
			if idx >= len(vals)-1 {
				break
			}
			edge := (vals[idx] + vals[idx+1]) / 2
			if len(out) == 0 || edge != out[len(out)-1] {
				out = append(out, edge)
			}
		}
		return out
	}

	out := make([]float64, 0, len(vals)-1)
	for k := 1; k < len(vals); k++ {
		if vals[k] == vals[k-1] {
			continue
		}
		out = append(out, (vals[k]+vals[k-1])/2)
	}
	return out
}

// buildSymmetric grows an oblivious tree: every node on a level shares the
// same split, so the tree is a table of 2^depth leaves.
func (e *gbdtEngine) buildSymmetric(X *mat.Dense, rows []int, grads, hess []float64) *gbNode {
	levels := make([][]int, 1, 1<<uint(e.maxDepth))
	levels[0] = rows

	type levelSplit struct {
		feature   int
		threshold float64
	}
	var splits []levelSplit

	for depth := 0; depth < e.maxDepth; depth++ {
		// Pick the split with the best total gain across all nodes.
		bestGain := 0.0
		bestFeature, bestThreshold := -1, 0.0

		_, nFeatures := X.Dims()
		for j := 0; j < nFeatures; j++ {
			for _, threshold := range e.candidateThresholds(X, rows, j) {
				var gain float64
				for _, node := range levels {
					if len(node) == 0 {
						continue
					}
					var gSum, hSum, gl, hl float64
					for _, i := range node {
						gSum += grads[i]
						hSum += hess[i]
						if X.At(i, j) <= threshold {
							gl += grads[i]
							hl += hess[i]
						}
					}
					gr := gSum - gl
					hr := hSum - hl
					if hl == 0 || hr == 0 {
						continue
					}
					gain += gl*gl/(hl+e.lambda) + gr*gr/(hr+e.lambda) -
						gSum*gSum/(hSum+e.lambda)
				}
				if gain > bestGain {
					bestGain = gain
					bestFeature, bestThreshold = j, threshold
				}
			}
		}

		if bestFeature < 0 {
			break
		}
		splits = append(splits, levelSplit{bestFeature, bestThreshold})

		next := make([][]int, 0, len(levels)*2)
		for _, node := range levels {
			var left, right []int
			for _, i := range node {
				if X.At(i, bestFeature) <= bestThreshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			next = append(next, left, right)
		}
		levels = next
	}

	// Materialize the oblivious structure as an ordinary tree.
	var build func(depth int, node []int) *gbNode
	build = func(depth int, node []int) *gbNode {
		if depth >= len(splits) {
			var gSum, hSum float64
			for _, i := range node {
				gSum += grads[i]
				hSum += hess[i]
			}
			return &gbNode{leaf: true, value: e.leafValue(gSum, hSum)}
		}
		sp := splits[depth]
		var left, right []int
		for _, i := range node {
			if X.At(i, sp.feature) <= sp.threshold {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		return &gbNode{
			feature:   sp.feature,
			threshold: sp.threshold,
			left:      build(depth+1, left),
			right:     build(depth+1, right),
		}
	}
	return build(0, rows)
}

func gbPredictOne(n *gbNode, row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// rawScores sums tree outputs per output column for one row.
func (e *gbdtEngine) rawScores(row []float64) []float64 {
	nOutputs := 1
	if e.multiclass {
		nOutputs = len(e.classes)
	}
	scores := make([]float64, nOutputs)
	copy(scores, e.baseScore)
	for _, roundTrees := range e.trees {
		for o, tree := range roundTrees {
			scores[o] += e.learningRate * gbPredictOne(tree, row)
		}
	}
	return scores
}

func (e *gbdtEngine) predictProba(op string, X mat.Matrix) (*mat.Dense, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError(op, "PredictProba")
	}
	if err := checkPredict(op, X, e.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(e.classes), nil)

	for i := 0; i < r; i++ {
		scores := e.rawScores(Xd.RawRowView(i))
		if !e.multiclass {
			p := sigmoid(scores[0])
			proba.Set(i, 0, 1-p)
			proba.Set(i, 1, p)
			continue
		}
		maxScore := scores[argmax(scores)]
		var sum float64
		for o, s := range scores {
			p := math.Exp(s - maxScore)
			proba.Set(i, o, p)
			sum += p
		}
		for o := range e.classes {
			proba.Set(i, o, proba.At(i, o)/sum)
		}
	}
	return proba, nil
}

func (e *gbdtEngine) predict(op string, X mat.Matrix) ([]int, error) {
	proba, err := e.predictProba(op, X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = e.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// Classes implements ProbabilityClassifier.
func (e *gbdtEngine) Classes() []int { return append([]int(nil), e.classes...) }

// GetParams implements Classifier.
func (e *gbdtEngine) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":  e.nEstimators,
		"learning_rate": e.learningRate,
		"max_depth":     e.maxDepth,
		"reg_lambda":    e.lambda,
	}
}

// SetParams implements Classifier.
func (e *gbdtEngine) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			e.nEstimators = v
		case "learning_rate":
			v, ok := paramFloat(value)
			if !ok || v <= 0 {
				return errors.NewValidationError(key, "must be a positive number", value)
			}
			e.learningRate = v
		case "max_depth":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			e.maxDepth = v
		case "reg_lambda":
			v, ok := paramFloat(value)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative number", value)
			}
			e.lambda = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// GradientBoosting is depth-3 exact-split boosting without explicit leaf
// regularization.
type GradientBoosting struct{ gbdtEngine }

// NewGradientBoosting creates an unfitted gradient-boosting classifier.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{gbdtEngine: newGBDTEngine(variantExact, 3, 0)}
}

// Name implements Classifier.
func (g *GradientBoosting) Name() string { return "Gradient Boosting" }

// Fit implements Classifier.
func (g *GradientBoosting) Fit(X mat.Matrix, y []int) error {
	return g.fit("GradientBoosting.Fit", X, y)
}

// Predict implements Classifier.
func (g *GradientBoosting) Predict(X mat.Matrix) ([]int, error) {
	return g.predict("GradientBoosting.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (g *GradientBoosting) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return g.predictProba("GradientBoosting.PredictProba", X)
}

// XGBoost is exact-split boosting with L2 leaf regularization, depth 6.
type XGBoost struct{ gbdtEngine }

// NewXGBoost creates an unfitted XGBoost-style classifier.
func NewXGBoost() *XGBoost {
	return &XGBoost{gbdtEngine: newGBDTEngine(variantExact, 6, 1.0)}
}

// Name implements Classifier.
func (g *XGBoost) Name() string { return "XGBoost" }

// Fit implements Classifier.
func (g *XGBoost) Fit(X mat.Matrix, y []int) error {
	return g.fit("XGBoost.Fit", X, y)
}

// Predict implements Classifier.
func (g *XGBoost) Predict(X mat.Matrix) ([]int, error) {
	return g.predict("XGBoost.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (g *XGBoost) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return g.predictProba("XGBoost.PredictProba", X)
}

// LightGBM is histogram-split boosting, depth 6.
type LightGBM struct{ gbdtEngine }

// NewLightGBM creates an unfitted LightGBM-style classifier.
func NewLightGBM() *LightGBM {
	return &LightGBM{gbdtEngine: newGBDTEngine(variantHistogram, 6, 1.0)}
}

// Name implements Classifier.
func (g *LightGBM) Name() string { return "LightGBM" }

// Fit implements Classifier.
func (g *LightGBM) Fit(X mat.Matrix, y []int) error {
	return g.fit("LightGBM.Fit", X, y)
}

// Predict implements Classifier.
func (g *LightGBM) Predict(X mat.Matrix) ([]int, error) {
	return g.predict("LightGBM.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (g *LightGBM) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return g.predictProba("LightGBM.PredictProba", X)
}

// CatBoost is boosting over oblivious trees, depth 6.
type CatBoost struct{ gbdtEngine }

// NewCatBoost creates an unfitted CatBoost-style classifier.
func NewCatBoost() *CatBoost {
	return &CatBoost{gbdtEngine: newGBDTEngine(variantSymmetric, 6, 1.0)}
}

// Name implements Classifier.
func (g *CatBoost) Name() string { return "CatBoost" }

// Fit implements Classifier.
func (g *CatBoost) Fit(X mat.Matrix, y []int) error {
	return g.fit("CatBoost.Fit", X, y)
}

// Predict implements Classifier.
func (g *CatBoost) Predict(X mat.Matrix) ([]int, error) {
	return g.predict("CatBoost.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (g *CatBoost) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return g.predictProba("CatBoost.PredictProba", X)
}
