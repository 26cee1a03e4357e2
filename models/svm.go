package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// SVC is a linear support vector classifier trained with stochastic
// subgradient descent on the hinge loss. Multiclass problems are handled
// one-vs-rest. It deliberately does not expose probability estimates, so
// probability-based metrics are skipped for it.
type SVC struct {
	state *model.StateManager

	// Hyperparameters
	c           float64 // inverse regularization strength
	maxIter     int
	seed        int
	classWeight string

	// Fitted parameters
	coef      [][]float64
	intercept []float64
	classes   []int
	nFeatures int
}

// NewSVC creates an unfitted linear SVC.
func NewSVC() *SVC {
	return &SVC{
		state:   model.NewStateManager(),
		c:       1.0,
		maxIter: 1000,
		seed:    42,
	}
}

// Name implements Classifier.
func (s *SVC) Name() string { return "SVM" }

// SetClassWeight implements ClassWeighted.
func (s *SVC) SetClassWeight(mode string) { s.classWeight = mode }

// Fit trains one hinge-loss subproblem per class (or one for binary).
func (s *SVC) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("SVC.Fit", X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	s.nFeatures = nFeatures
	s.classes = uniqueClasses(y)
	weights := balancedWeights(y, s.classWeight)

	nProblems := len(s.classes)
	if nProblems == 2 {
		nProblems = 1
	}
	s.coef = make([][]float64, nProblems)
	s.intercept = make([]float64, nProblems)

	lambda := 1.0 / (s.c * float64(nSamples))
	rng := rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)))

	for p := 0; p < nProblems; p++ {
		positive := s.classes[p]
		if len(s.classes) == 2 {
			positive = s.classes[1]
		}

		// Signed targets for the hinge loss.
		target := make([]float64, nSamples)
		for i, l := range y {
			if l == positive {
				target[i] = 1.0
			} else {
				target[i] = -1.0
			}
		}

		w := make([]float64, nFeatures)
		b := 0.0
		t := 0
		for iter := 0; iter < s.maxIter; iter++ {
			i := rng.IntN(nSamples)
			t++
			eta := 1.0 / (lambda * float64(t))

			row := Xd.RawRowView(i)
			margin := b
			for j, x := range row {
				margin += w[j] * x
			}
			margin *= target[i]

			// Pegasos-style update: always shrink, add the sample term
			// only when it violates the margin.
			for j := range w {
				w[j] *= 1 - eta*lambda
			}
			if margin < 1 {
				scale := eta * weights[i] * target[i]
				for j, x := range row {
					w[j] += scale * x
				}
				b += scale
			}
		}

		s.coef[p] = w
		s.intercept[p] = b
	}

	s.state.SetDimensions(nFeatures, nSamples)
	s.state.SetFitted()
	return nil
}

// Predict returns the class with the largest margin per row.
func (s *SVC) Predict(X mat.Matrix) ([]int, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("SVC", "Predict")
	}
	if err := checkPredict("SVC.Predict", X, s.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	out := make([]int, r)

	for i := 0; i < r; i++ {
		row := Xd.RawRowView(i)
		if len(s.classes) == 2 {
			margin := s.intercept[0]
			for j, x := range row {
				margin += s.coef[0][j] * x
			}
			if margin >= 0 {
				out[i] = s.classes[1]
			} else {
				out[i] = s.classes[0]
			}
			continue
		}

		best := 0
		bestMargin := math.Inf(-1)
		for p := range s.coef {
			margin := s.intercept[p]
			for j, x := range row {
				margin += s.coef[p][j] * x
			}
			if margin > bestMargin {
				bestMargin = margin
				best = p
			}
		}
		out[i] = s.classes[best]
	}
	return out, nil
}

// GetParams implements Classifier.
func (s *SVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":            s.c,
		"max_iter":     s.maxIter,
		"random_state": s.seed,
		"class_weight": s.classWeight,
	}
}

// SetParams implements Classifier.
func (s *SVC) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			v, ok := paramFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			s.c = v
		case "max_iter":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			s.maxIter = v
		case "random_state":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			s.seed = v
		case "class_weight":
			str, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			s.classWeight = str
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
