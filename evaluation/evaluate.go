// Package evaluation scores fitted classifiers on held-out data.
package evaluation

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/metrics"
	"github.com/modelbench/modelbench/models"
	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
)

// zeroDivision substitution for precision, recall and F1 when a class is
// never predicted.
const zeroDivision = 1.0

// Evaluate predicts on the test set and computes accuracy, weighted
// precision, recall and F1, plus AUC when the model exposes probabilities.
// Binary problems use the positive-class column; multiclass problems use a
// macro one-vs-rest average. The AUC entry is NaN when the model has no
// probability estimates or when the test labels cannot support it.
func Evaluate(clf models.Classifier, XTest mat.Matrix, yTest []int) (map[string]float64, error) {
	yPred, err := clf.Predict(XTest)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", clf.Name())
	}

	accuracy, err := metrics.Accuracy(yTest, yPred)
	if err != nil {
		return nil, err
	}
	precision, err := metrics.PrecisionWeighted(yTest, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}
	recall, err := metrics.RecallWeighted(yTest, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}
	f1, err := metrics.F1Weighted(yTest, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}

	m := map[string]float64{
		"accuracy":  accuracy,
		"precision": precision,
		"recall":    recall,
		"f1":        f1,
		"auc":       auc(clf, XTest, yTest),
	}

	log.L().Debug().
		Str("model", clf.Name()).
		Float64("accuracy", accuracy).
		Float64("f1", f1).
		Msg("evaluated model")
	return m, nil
}

// auc returns NaN instead of an error so a degenerate test set does not
// abort a benchmark run.
func auc(clf models.Classifier, XTest mat.Matrix, yTest []int) float64 {
	prob, ok := clf.(models.ProbabilityClassifier)
	if !ok {
		return math.NaN()
	}

	proba, err := prob.PredictProba(XTest)
	if err != nil {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", err.Error(), math.NaN()))
		return math.NaN()
	}

	classes := prob.Classes()
	var score float64
	if len(classes) == 2 {
		positive := classes[1]
		scores := mat.Col(nil, 1, proba)
		score, err = metrics.AUCBinary(binarize(yTest, positive), scores)
	} else {
		score, err = metrics.AUCOneVsRest(yTest, proba, classes)
	}
	if err != nil {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", err.Error(), math.NaN()))
		return math.NaN()
	}
	return score
}

func binarize(y []int, positive int) []int {
	out := make([]int, len(y))
	for i, l := range y {
		if l == positive {
			out[i] = 1
		}
	}
	return out
}
