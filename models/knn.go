package models

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/core/parallel"
	"github.com/modelbench/modelbench/pkg/errors"
)

// knnParallelThreshold is the query-batch size below which prediction
// runs sequentially.
const knnParallelThreshold = 32

// KNN is a k-nearest-neighbors classifier with Euclidean distance and
// uniform voting. Fit only stores the training data; prediction does the
// work, parallelized across query rows.
type KNN struct {
	state *model.StateManager

	nNeighbors int

	trainX    *mat.Dense
	trainY    []int
	classes   []int
	nFeatures int
}

// NewKNN creates an unfitted KNN classifier.
func NewKNN() *KNN {
	return &KNN{
		state:      model.NewStateManager(),
		nNeighbors: 5,
	}
}

// Name implements Classifier.
func (k *KNN) Name() string { return "K-Nearest Neighbors" }

// Fit stores the training set.
func (k *KNN) Fit(X mat.Matrix, y []int) error {
	if err := checkXY("KNN.Fit", X, y); err != nil {
		return err
	}
	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	if k.nNeighbors > nSamples {
		return errors.NewValueError("KNN.Fit",
			"n_neighbors exceeds the number of training samples")
	}

	k.trainX = mat.DenseCopyOf(Xd)
	k.trainY = append([]int(nil), y...)
	k.classes = uniqueClasses(y)
	k.nFeatures = nFeatures

	k.state.SetDimensions(nFeatures, nSamples)
	k.state.SetFitted()
	return nil
}

// Predict returns the majority class among the k nearest training rows.
func (k *KNN) Predict(X mat.Matrix) ([]int, error) {
	proba, err := k.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = k.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// PredictProba returns the fraction of the k nearest neighbors belonging to
// each class. Ties in distance are broken by training-set order.
func (k *KNN) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !k.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNN", "PredictProba")
	}
	if err := checkPredict("KNN.PredictProba", X, k.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	nTrain, _ := k.trainX.Dims()

	classIndex := make(map[int]int, len(k.classes))
	for ci, c := range k.classes {
		classIndex[c] = ci
	}

	proba := mat.NewDense(r, len(k.classes), nil)

	// Goroutine fan-out only pays off once the query batch is non-trivial.
	parallel.ParallelizeWithThreshold(r, knnParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := Xd.RawRowView(i)
			dists := make([]float64, nTrain)
			order := make([]int, nTrain)
			for t := 0; t < nTrain; t++ {
				trainRow := k.trainX.RawRowView(t)
				var d float64
				for j, x := range row {
					diff := x - trainRow[j]
					d += diff * diff
				}
				dists[t] = d
				order[t] = t
			}
			sort.SliceStable(order, func(a, b int) bool {
				return dists[order[a]] < dists[order[b]]
			})

			inv := 1.0 / float64(k.nNeighbors)
			for _, t := range order[:k.nNeighbors] {
				proba.Set(i, classIndex[k.trainY[t]],
					proba.At(i, classIndex[k.trainY[t]])+inv)
			}
		}
	})

	return proba, nil
}

// Classes implements ProbabilityClassifier.
func (k *KNN) Classes() []int { return append([]int(nil), k.classes...) }

// GetParams implements Classifier.
func (k *KNN) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": k.nNeighbors,
	}
}

// SetParams implements Classifier.
func (k *KNN) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_neighbors":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			k.nNeighbors = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
