// Package models implements the classifier catalog: thirteen named
// variants spanning linear, tree-ensemble, margin-based, instance-based,
// probabilistic, neural, and gradient-boosted families, all behind one
// capability interface.
package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/pkg/errors"
)

// Classifier is the capability interface every catalog entry implements.
type Classifier interface {
	// Name returns the human-readable catalog name.
	Name() string
	// Fit trains the model. y holds zero-based class labels, one per row
	// of X.
	Fit(X mat.Matrix, y []int) error
	// Predict returns one class label per row of X.
	Predict(X mat.Matrix) ([]int, error)
	// GetParams returns the hyperparameters by their canonical names.
	GetParams() map[string]interface{}
	// SetParams overrides hyperparameters before fitting. Unknown keys
	// are an error.
	SetParams(params map[string]interface{}) error
}

// ProbabilityClassifier is implemented by models that expose calibrated or
// uncalibrated class-probability estimates.
type ProbabilityClassifier interface {
	Classifier
	// PredictProba returns an (n_samples x n_classes) matrix of class
	// probabilities, columns ordered as Classes().
	PredictProba(X mat.Matrix) (*mat.Dense, error)
	// Classes returns the class labels seen during fitting, sorted.
	Classes() []int
}

// ClassWeighted is implemented by models that support class-balancing
// weights. The only recognized mode is "balanced".
type ClassWeighted interface {
	SetClassWeight(mode string)
}

// checkXY validates the shape agreement between X and y ahead of fitting.
func checkXY(op string, X mat.Matrix, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if r != len(y) {
		return errors.NewDimensionError(op, r, len(y), 0)
	}
	return nil
}

// checkPredict validates the feature count at prediction time.
func checkPredict(op string, X mat.Matrix, nFeatures int) error {
	r, c := X.Dims()
	if r == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != nFeatures {
		return errors.NewDimensionError(op, nFeatures, c, 1)
	}
	return nil
}

// uniqueClasses returns the sorted distinct labels in y.
func uniqueClasses(y []int) []int {
	set := make(map[int]struct{})
	for _, l := range y {
		set[l] = struct{}{}
	}
	classes := make([]int, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Ints(classes)
	return classes
}

// balancedWeights returns one weight per sample under the "balanced"
// heuristic: n_samples / (n_classes * class_count). An empty mode yields
// uniform weights.
func balancedWeights(y []int, mode string) []float64 {
	w := make([]float64, len(y))
	if mode != "balanced" {
		for i := range w {
			w[i] = 1.0
		}
		return w
	}

	counts := make(map[int]int)
	for _, l := range y {
		counts[l]++
	}
	n := float64(len(y))
	k := float64(len(counts))
	for i, l := range y {
		w[i] = n / (k * float64(counts[l]))
	}
	return w
}

// toDense converts any mat.Matrix into a *mat.Dense without copying when
// it already is one.
func toDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	r, c := X.Dims()
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.Set(i, j, X.At(i, j))
		}
	}
	return d
}

// sigmoid is the logistic link shared by the linear and boosted models.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// argmax returns the index of the largest value.
func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}

// paramInt reads an integer override. Numeric values arrive as float64 or
// int depending on the caller, so both are accepted.
func paramInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func paramFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
