package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// GaussianNB is a Gaussian naive Bayes classifier. Each feature is modeled
// as an independent normal distribution per class; variances are smoothed
// by a small fraction of the largest feature variance to keep the
// log-likelihood finite for constant features.
type GaussianNB struct {
	state *model.StateManager

	varSmoothing float64

	classes   []int
	priors    []float64   // log prior per class
	means     [][]float64 // [class][feature]
	variances [][]float64 // [class][feature]
	nFeatures int
}

// NewGaussianNB creates an unfitted Gaussian naive Bayes classifier.
func NewGaussianNB() *GaussianNB {
	return &GaussianNB{
		state:        model.NewStateManager(),
		varSmoothing: 1e-9,
	}
}

// Name implements Classifier.
func (g *GaussianNB) Name() string { return "Naive Bayes" }

// Fit estimates per-class feature means and variances.
func (g *GaussianNB) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("GaussianNB.Fit", X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	g.nFeatures = nFeatures
	g.classes = uniqueClasses(y)

	classIndex := make(map[int]int, len(g.classes))
	for ci, c := range g.classes {
		classIndex[c] = ci
	}

	counts := make([]float64, len(g.classes))
	g.means = make([][]float64, len(g.classes))
	g.variances = make([][]float64, len(g.classes))
	for ci := range g.classes {
		g.means[ci] = make([]float64, nFeatures)
		g.variances[ci] = make([]float64, nFeatures)
	}

	for i := 0; i < nSamples; i++ {
		ci := classIndex[y[i]]
		counts[ci]++
		row := Xd.RawRowView(i)
		for j, x := range row {
			g.means[ci][j] += x
		}
	}
	for ci := range g.classes {
		for j := range g.means[ci] {
			g.means[ci][j] /= counts[ci]
		}
	}
	for i := 0; i < nSamples; i++ {
		ci := classIndex[y[i]]
		row := Xd.RawRowView(i)
		for j, x := range row {
			diff := x - g.means[ci][j]
			g.variances[ci][j] += diff * diff
		}
	}

	// Smoothing term scaled by the largest overall feature variance.
	var maxVar float64
	for j := 0; j < nFeatures; j++ {
		col := mat.Col(nil, j, Xd)
		mean := 0.0
		for _, v := range col {
			mean += v
		}
		mean /= float64(nSamples)
		variance := 0.0
		for _, v := range col {
			diff := v - mean
			variance += diff * diff
		}
		variance /= float64(nSamples)
		if variance > maxVar {
			maxVar = variance
		}
	}
	eps := g.varSmoothing * maxVar
	if eps == 0 {
		eps = g.varSmoothing
	}

	g.priors = make([]float64, len(g.classes))
	for ci := range g.classes {
		for j := range g.variances[ci] {
			g.variances[ci][j] = g.variances[ci][j]/counts[ci] + eps
		}
		g.priors[ci] = math.Log(counts[ci] / float64(nSamples))
	}

	g.state.SetDimensions(nFeatures, nSamples)
	g.state.SetFitted()
	return nil
}

// Predict returns the class with the highest posterior per row.
func (g *GaussianNB) Predict(X mat.Matrix) ([]int, error) {
	proba, err := g.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = g.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// PredictProba returns normalized class posteriors. Log joint likelihoods
// are shifted by their row maximum before exponentiation for stability.
func (g *GaussianNB) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !g.state.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "PredictProba")
	}
	if err := checkPredict("GaussianNB.PredictProba", X, g.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(g.classes), nil)

	for i := 0; i < r; i++ {
		row := Xd.RawRowView(i)
		logJoint := make([]float64, len(g.classes))
		for ci := range g.classes {
			ll := g.priors[ci]
			for j, x := range row {
				v := g.variances[ci][j]
				diff := x - g.means[ci][j]
				ll += -0.5*math.Log(2*math.Pi*v) - diff*diff/(2*v)
			}
			logJoint[ci] = ll
		}

		maxLL := logJoint[argmax(logJoint)]
		var sum float64
		for ci, ll := range logJoint {
			p := math.Exp(ll - maxLL)
			proba.Set(i, ci, p)
			sum += p
		}
		for ci := range g.classes {
			proba.Set(i, ci, proba.At(i, ci)/sum)
		}
	}

	return proba, nil
}

// Classes implements ProbabilityClassifier.
func (g *GaussianNB) Classes() []int { return append([]int(nil), g.classes...) }

// GetParams implements Classifier.
func (g *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": g.varSmoothing,
	}
}

// SetParams implements Classifier.
func (g *GaussianNB) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "var_smoothing":
			v, ok := paramFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			g.varSmoothing = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
