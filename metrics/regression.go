package metrics

import (
	"math"

	"github.com/modelbench/modelbench/pkg/errors"
)

// MSE computes the mean squared error between two value vectors.
func MSE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("MSE", n, len(yPred), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error between two value vectors.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// RMSELabels computes RMSE treating integer class labels as numeric
// values, the convention the trainer uses for its error column.
func RMSELabels(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, errors.NewDimensionError("RMSELabels", len(yTrue), len(yPred), 0)
	}
	a := make([]float64, len(yTrue))
	b := make([]float64, len(yPred))
	for i := range yTrue {
		a[i] = float64(yTrue[i])
		b[i] = float64(yPred[i])
	}
	return RMSE(a, b)
}
