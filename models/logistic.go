package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// LogisticRegression is a gradient-descent logistic classifier with L2
// regularization. Multiclass problems are handled one-vs-rest.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c           float64 // inverse regularization strength
	maxIter     int
	tol         float64
	classWeight string

	// Fitted parameters
	coef      [][]float64 // one weight vector per binary problem
	intercept []float64
	classes   []int
	nFeatures int
}

// NewLogisticRegression creates an unfitted LogisticRegression with
// scikit-learn-style defaults.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		state:   model.NewStateManager(),
		c:       1.0,
		maxIter: 1000,
		tol:     1e-4,
	}
}

// Name implements Classifier.
func (lr *LogisticRegression) Name() string { return "Logistic Regression" }

// SetClassWeight implements ClassWeighted.
func (lr *LogisticRegression) SetClassWeight(mode string) { lr.classWeight = mode }

// Classes implements ProbabilityClassifier.
func (lr *LogisticRegression) Classes() []int { return lr.classes }

// Fit trains the classifier.
func (lr *LogisticRegression) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("LogisticRegression.Fit", X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	_, nFeatures := Xd.Dims()
	lr.nFeatures = nFeatures
	lr.classes = uniqueClasses(y)
	weights := balancedWeights(y, lr.classWeight)

	nProblems := len(lr.classes)
	if nProblems == 2 {
		nProblems = 1
	}
	lr.coef = make([][]float64, nProblems)
	lr.intercept = make([]float64, nProblems)

	for p := 0; p < nProblems; p++ {
		positive := lr.classes[p]
		if len(lr.classes) == 2 {
			// One binary problem; class index 1 is the positive class.
			positive = lr.classes[1]
		}

		target := make([]float64, len(y))
		for i, l := range y {
			if l == positive {
				target[i] = 1.0
			}
		}
		lr.coef[p] = make([]float64, nFeatures)
		lr.fitBinary(Xd, target, weights, p)
	}

	lr.state.SetDimensions(nFeatures, len(y))
	lr.state.SetFitted()
	return nil
}

// fitBinary runs full-batch gradient descent on one binary subproblem.
func (lr *LogisticRegression) fitBinary(X *mat.Dense, target, sampleWeight []float64, p int) {
	nSamples, nFeatures := X.Dims()
	w := lr.coef[p]
	lambda := 1.0 / lr.c

	converged := false
	for iter := 0; iter < lr.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			row := X.RawRowView(i)
			z := lr.intercept[p]
			for j, x := range row {
				z += x * w[j]
			}
			residual := sampleWeight[i] * (sigmoid(z) - target[i])
			gradB += residual
			for j, x := range row {
				gradW[j] += residual * x
			}
		}

		for j := range gradW {
			gradW[j] = gradW[j]/float64(nSamples) + lambda*w[j]/float64(nSamples)
		}
		gradB /= float64(nSamples)

		// Decaying step size keeps the full-batch updates stable.
		step := 1.0 / (1.0 + 0.01*float64(iter))
		maxGrad := math.Abs(gradB)
		for j := range w {
			w[j] -= step * gradW[j]
			if g := math.Abs(gradW[j]); g > maxGrad {
				maxGrad = g
			}
		}
		lr.intercept[p] -= step * gradB

		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter))
	}
}

// decision returns the raw scores for every binary subproblem.
func (lr *LogisticRegression) decision(X *mat.Dense, i int) []float64 {
	row := X.RawRowView(i)
	scores := make([]float64, len(lr.coef))
	for p := range lr.coef {
		z := lr.intercept[p]
		for j, x := range row {
			z += x * lr.coef[p][j]
		}
		scores[p] = z
	}
	return scores
}

// Predict returns the most probable class per row.
func (lr *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = lr.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// PredictProba returns class probabilities. Binary problems use the
// sigmoid directly; one-vs-rest scores are normalized to sum to one.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	if err := checkPredict("LogisticRegression.PredictProba", X, lr.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(lr.classes), nil)

	for i := 0; i < r; i++ {
		scores := lr.decision(Xd, i)
		if len(lr.classes) == 2 {
			p1 := sigmoid(scores[0])
			proba.Set(i, 0, 1-p1)
			proba.Set(i, 1, p1)
			continue
		}

		sum := 0.0
		for k, z := range scores {
			p := sigmoid(z)
			proba.Set(i, k, p)
			sum += p
		}
		if sum > 0 {
			for k := range scores {
				proba.Set(i, k, proba.At(i, k)/sum)
			}
		}
	}
	return proba, nil
}

// GetParams implements Classifier.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":            lr.c,
		"max_iter":     lr.maxIter,
		"tol":          lr.tol,
		"class_weight": lr.classWeight,
	}
}

// SetParams implements Classifier.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			v, ok := paramFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			lr.c = v
		case "max_iter":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			lr.maxIter = v
		case "tol":
			v, ok := paramFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			lr.tol = v
		case "class_weight":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			lr.classWeight = s
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
