package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/pkg/errors"
)

// separableData builds two well-separated clusters with slight
// deterministic jitter so every classifier should fit it perfectly.
func separableData() (*mat.Dense, []int) {
	const perClass = 20
	X := mat.NewDense(2*perClass, 2, nil)
	y := make([]int, 2*perClass)
	for i := 0; i < perClass; i++ {
		j := float64(i) * 0.05
		X.Set(i, 0, 0.0+j)
		X.Set(i, 1, 0.5-j)
		y[i] = 0
		X.Set(perClass+i, 0, 5.0+j)
		X.Set(perClass+i, 1, 5.5-j)
		y[perClass+i] = 1
	}
	return X, y
}

func threeClassData() (*mat.Dense, []int) {
	const perClass = 15
	centers := [][2]float64{{0, 0}, {6, 0}, {3, 6}}
	X := mat.NewDense(3*perClass, 2, nil)
	y := make([]int, 3*perClass)
	for c, center := range centers {
		for i := 0; i < perClass; i++ {
			row := c*perClass + i
			j := float64(i) * 0.04
			X.Set(row, 0, center[0]+j)
			X.Set(row, 1, center[1]-j)
			y[row] = c
		}
	}
	return X, y
}

func TestAllModelsFitPredictSeparable(t *testing.T) {
	X, y := separableData()
	for name, clf := range GetModels() {
		t.Run(name, func(t *testing.T) {
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			pred, err := clf.Predict(X)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			correct := 0
			for i := range y {
				if pred[i] == y[i] {
					correct++
				}
			}
			acc := float64(correct) / float64(len(y))
			if acc < 0.95 {
				t.Errorf("training accuracy = %.2f, want >= 0.95", acc)
			}
		})
	}
}

func TestAllModelsMulticlass(t *testing.T) {
	X, y := threeClassData()
	for name, clf := range GetModels() {
		t.Run(name, func(t *testing.T) {
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			pred, err := clf.Predict(X)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			correct := 0
			for i := range y {
				if pred[i] == y[i] {
					correct++
				}
			}
			acc := float64(correct) / float64(len(y))
			if acc < 0.9 {
				t.Errorf("training accuracy = %.2f, want >= 0.9", acc)
			}
		})
	}
}

func TestProbaRowsSumToOne(t *testing.T) {
	X, y := threeClassData()
	for name, clf := range GetModels() {
		prob, ok := clf.(ProbabilityClassifier)
		if !ok {
			continue
		}
		t.Run(name, func(t *testing.T) {
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			proba, err := prob.PredictProba(X)
			if err != nil {
				t.Fatalf("PredictProba: %v", err)
			}
			r, c := proba.Dims()
			if c != 3 {
				t.Fatalf("proba columns = %d, want 3", c)
			}
			for i := 0; i < r; i++ {
				var sum float64
				for j := 0; j < c; j++ {
					p := proba.At(i, j)
					if p < 0 || p > 1 {
						t.Fatalf("proba[%d][%d] = %f out of range", i, j, p)
					}
					sum += p
				}
				if math.Abs(sum-1) > 1e-9 {
					t.Fatalf("row %d sums to %f, want 1", i, sum)
				}
			}
		})
	}
}

func TestSigmoid(t *testing.T) {
	if got := sigmoid(0); got != 0.5 {
		t.Errorf("sigmoid(0) = %f, want 0.5", got)
	}
	for _, z := range []float64{-3, -0.5, 0.5, 3} {
		if sum := sigmoid(z) + sigmoid(-z); math.Abs(sum-1) > 1e-12 {
			t.Errorf("sigmoid(%f)+sigmoid(%f) = %f, want 1", z, -z, sum)
		}
	}
}

func TestBoostedFitSingleClass(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{0, 1, 1, 0, 2, 1, 3, 0})
	y := []int{7, 7, 7, 7}

	boosted := []Classifier{
		NewGradientBoosting(),
		NewXGBoost(),
		NewLightGBM(),
		NewCatBoost(),
	}
	for _, clf := range boosted {
		t.Run(clf.Name(), func(t *testing.T) {
			err := clf.Fit(X, y)
			if err == nil {
				t.Fatal("expected an error for single-class labels")
			}
			var cde *errors.ClassDiversityError
			if !errors.As(err, &cde) {
				t.Errorf("error = %v, want ClassDiversityError", err)
			}
		})
	}
}

func TestSVMHasNoProbabilities(t *testing.T) {
	var clf Classifier = NewSVC()
	if _, ok := clf.(ProbabilityClassifier); ok {
		t.Error("SVC should not expose probability estimates")
	}
}

func TestPredictBeforeFit(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	for name, clf := range GetModels() {
		t.Run(name, func(t *testing.T) {
			_, err := clf.Predict(X)
			if err == nil {
				t.Fatal("expected an error before Fit")
			}
			var nf *errors.NotFittedError
			if !errors.As(err, &nf) {
				t.Errorf("error = %v, want NotFittedError", err)
			}
		})
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	X, y := separableData()
	clf := NewLogisticRegression()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	bad := mat.NewDense(2, 3, nil)
	if _, err := clf.Predict(bad); err == nil {
		t.Error("expected a dimension error for mismatched feature count")
	}
}

func TestSetParamsRoundTrip(t *testing.T) {
	clf := NewRandomForest()
	if err := clf.SetParams(map[string]interface{}{
		"n_estimators": 25,
		"max_depth":    4,
	}); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	params := clf.GetParams()
	if params["n_estimators"] != 25 {
		t.Errorf("n_estimators = %v, want 25", params["n_estimators"])
	}
	if params["max_depth"] != 4 {
		t.Errorf("max_depth = %v, want 4", params["max_depth"])
	}
}

func TestSetParamsUnknownKey(t *testing.T) {
	for name, clf := range GetModels() {
		t.Run(name, func(t *testing.T) {
			err := clf.SetParams(map[string]interface{}{"no_such_param": 1})
			if err == nil {
				t.Fatal("expected an error for an unknown parameter")
			}
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestBalancedWeightsEqualizeClasses(t *testing.T) {
	y := []int{0, 0, 0, 0, 1}
	w := balancedWeights(y, "balanced")
	var sum0, sum1 float64
	for i, l := range y {
		if l == 0 {
			sum0 += w[i]
		} else {
			sum1 += w[i]
		}
	}
	if math.Abs(sum0-sum1) > 1e-9 {
		t.Errorf("class weight sums %f and %f, want equal", sum0, sum1)
	}
}

func TestKNNProbaConsistentAcrossBatchSizes(t *testing.T) {
	X, y := separableData()
	clf := NewKNN()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// One batch below the sequential threshold, one well above it; the
	// first row is identical, so its probabilities must match.
	small := mat.NewDense(1, 2, []float64{2.5, 2.5})
	big := mat.NewDense(knnParallelThreshold+8, 2, nil)
	r, _ := big.Dims()
	for i := 0; i < r; i++ {
		big.SetRow(i, []float64{2.5, 2.5})
	}

	smallProba, err := clf.PredictProba(small)
	if err != nil {
		t.Fatalf("PredictProba(small): %v", err)
	}
	bigProba, err := clf.PredictProba(big)
	if err != nil {
		t.Fatalf("PredictProba(big): %v", err)
	}
	for ci := 0; ci < 2; ci++ {
		if smallProba.At(0, ci) != bigProba.At(0, ci) {
			t.Errorf("class %d proba differs across batch sizes: %f vs %f",
				ci, smallProba.At(0, ci), bigProba.At(0, ci))
		}
	}
}

func TestForestDeterministicAcrossFits(t *testing.T) {
	X, y := separableData()
	probe := mat.NewDense(1, 2, []float64{2.5, 2.5})

	run := func() []int {
		clf := NewRandomForest()
		if err := clf.SetParams(map[string]interface{}{"n_estimators": 10}); err != nil {
			t.Fatalf("SetParams: %v", err)
		}
		if err := clf.Fit(X, y); err != nil {
			t.Fatalf("Fit: %v", err)
		}
		pred, err := clf.Predict(probe)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		return pred
	}

	if a, b := run(), run(); a[0] != b[0] {
		t.Errorf("predictions differ across identical fits: %d vs %d", a[0], b[0])
	}
}
