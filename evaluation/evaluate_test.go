package evaluation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/models"
)

func trainedKNN(t *testing.T) (*models.KNN, *mat.Dense, []int) {
	t.Helper()
	X := mat.NewDense(12, 1, []float64{
		0, 0.1, 0.2, 0.3, 0.4, 0.5,
		5, 5.1, 5.2, 5.3, 5.4, 5.5,
	})
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	clf := models.NewKNN()
	if err := clf.SetParams(map[string]interface{}{"n_neighbors": 3}); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return clf, X, y
}

func TestEvaluatePerfectPrediction(t *testing.T) {
	clf, X, y := trainedKNN(t)
	m, err := Evaluate(clf, X, y)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, name := range []string{"accuracy", "precision", "recall", "f1", "auc"} {
		if m[name] != 1.0 {
			t.Errorf("%s = %f, want 1.0", name, m[name])
		}
	}
}

func TestEvaluateWithoutProbabilities(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{0, 0.2, 0.4, 0.6, 5, 5.2, 5.4, 5.6})
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	clf := models.NewSVC()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	m, err := Evaluate(clf, X, y)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !math.IsNaN(m["auc"]) {
		t.Errorf("auc = %f, want NaN for a model without probabilities", m["auc"])
	}
	if m["accuracy"] != 1.0 {
		t.Errorf("accuracy = %f, want 1.0", m["accuracy"])
	}
}

func TestEvaluateDegenerateTestSet(t *testing.T) {
	clf, _, _ := trainedKNN(t)
	// All test labels in one class: AUC undefined, other metrics fine.
	XTest := mat.NewDense(3, 1, []float64{0, 0.1, 0.2})
	yTest := []int{0, 0, 0}
	m, err := Evaluate(clf, XTest, yTest)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !math.IsNaN(m["auc"]) {
		t.Errorf("auc = %f, want NaN for a single-class test set", m["auc"])
	}
	if m["accuracy"] != 1.0 {
		t.Errorf("accuracy = %f, want 1.0", m["accuracy"])
	}
}
