package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// AdaBoost is a SAMME boosting ensemble over decision stumps. Each round
// fits a depth-1 tree on reweighted samples and votes with a weight derived
// from its weighted training error.
type AdaBoost struct {
	state *model.StateManager

	nEstimators  int
	learningRate float64
	seed         int

	stumps    []*treeNode
	alphas    []float64
	classes   []int
	nFeatures int
}

// NewAdaBoost creates an unfitted AdaBoost classifier.
func NewAdaBoost() *AdaBoost {
	return &AdaBoost{
		state:        model.NewStateManager(),
		nEstimators:  50,
		learningRate: 1.0,
		seed:         42,
	}
}

// Name implements Classifier.
func (a *AdaBoost) Name() string { return "AdaBoost" }

// Fit runs SAMME rounds until the estimator budget is spent or a round
// fits the data perfectly.
func (a *AdaBoost) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("AdaBoost.Fit", X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	a.nFeatures = nFeatures
	a.classes = uniqueClasses(y)
	nClasses := float64(len(a.classes))

	classIndex := make(map[int]int, len(a.classes))
	for ci, c := range a.classes {
		classIndex[c] = ci
	}
	rows := make([]int, nSamples)
	for i := range rows {
		rows[i] = i
	}
	weights := make([]float64, nSamples)
	for i := range weights {
		weights[i] = 1.0 / float64(nSamples)
	}
	rng := rand.New(rand.NewPCG(uint64(a.seed), uint64(a.seed)))

	a.stumps = a.stumps[:0]
	a.alphas = a.alphas[:0]

	for m := 0; m < a.nEstimators; m++ {
		stump := growTree(Xd, y, weights, classIndex, rows, 0, cartConfig{
			maxDepth:        1,
			minSamplesSplit: 2,
			rng:             rng,
		})

		var errSum float64
		miss := make([]bool, nSamples)
		for i := 0; i < nSamples; i++ {
			dist := treePredictDist(stump, Xd.RawRowView(i))
			if a.classes[argmax(dist)] != y[i] {
				miss[i] = true
				errSum += weights[i]
			}
		}

		if errSum <= 0 {
			// Perfect stump dominates the vote; no further rounds help.
			a.stumps = append(a.stumps, stump)
			a.alphas = append(a.alphas, 1.0)
			break
		}
		// A round no better than random chance cannot contribute.
		if errSum >= 1-1/nClasses {
			break
		}

		alpha := a.learningRate * (math.Log((1-errSum)/errSum) + math.Log(nClasses-1))
		a.stumps = append(a.stumps, stump)
		a.alphas = append(a.alphas, alpha)

		var norm float64
		for i := range weights {
			if miss[i] {
				weights[i] *= math.Exp(alpha)
			}
			norm += weights[i]
		}
		for i := range weights {
			weights[i] /= norm
		}
	}

	a.state.SetDimensions(nFeatures, nSamples)
	a.state.SetFitted()
	return nil
}

// votes accumulates weighted stump votes per class for one row.
func (a *AdaBoost) votes(row []float64) []float64 {
	scores := make([]float64, len(a.classes))
	for m, stump := range a.stumps {
		dist := treePredictDist(stump, row)
		scores[argmax(dist)] += a.alphas[m]
	}
	return scores
}

// Predict returns the class with the largest weighted vote per row.
func (a *AdaBoost) Predict(X mat.Matrix) ([]int, error) {
	if !a.state.IsFitted() {
		return nil, errors.NewNotFittedError("AdaBoost", "Predict")
	}
	if err := checkPredict("AdaBoost.Predict", X, a.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = a.classes[argmax(a.votes(Xd.RawRowView(i)))]
	}
	return out, nil
}

// PredictProba returns vote shares normalized to sum to one per row.
func (a *AdaBoost) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !a.state.IsFitted() {
		return nil, errors.NewNotFittedError("AdaBoost", "PredictProba")
	}
	if err := checkPredict("AdaBoost.PredictProba", X, a.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(a.classes), nil)
	for i := 0; i < r; i++ {
		scores := a.votes(Xd.RawRowView(i))
		var sum float64
		for _, s := range scores {
			sum += s
		}
		if sum == 0 {
			for ci := range a.classes {
				proba.Set(i, ci, 1.0/float64(len(a.classes)))
			}
			continue
		}
		for ci, s := range scores {
			proba.Set(i, ci, s/sum)
		}
	}
	return proba, nil
}

// Classes implements ProbabilityClassifier.
func (a *AdaBoost) Classes() []int { return append([]int(nil), a.classes...) }

// GetParams implements Classifier.
func (a *AdaBoost) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":  a.nEstimators,
		"learning_rate": a.learningRate,
		"random_state":  a.seed,
	}
}

// SetParams implements Classifier.
func (a *AdaBoost) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			a.nEstimators = v
		case "learning_rate":
			v, ok := paramFloat(value)
			if !ok || v <= 0 {
				return errors.NewValidationError(key, "must be a positive number", value)
			}
			a.learningRate = v
		case "random_state":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			a.seed = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
