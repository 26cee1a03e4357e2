// Package training runs the model benchmark: oversample, fit and score
// every classifier in the catalog on a fixed train/test split.
package training

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/metrics"
	"github.com/modelbench/modelbench/models"
	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
	"github.com/modelbench/modelbench/preprocessing"
)

// Results maps model name to metric name to score.
type Results map[string]map[string]float64

// MetricNames lists the metrics Train reports per model, in display order.
var MetricNames = []string{"accuracy", "precision", "recall", "f1", "rmse"}

type trainConfig struct {
	selected  []string
	overrides map[string]map[string]interface{}
	smoteSeed int
	skipSMOTE bool
}

// TrainOption configures a benchmark run.
type TrainOption func(*trainConfig)

// WithModels restricts the run to the named models. Names not present in
// the catalog are ignored.
func WithModels(names ...string) TrainOption {
	return func(c *trainConfig) { c.selected = append(c.selected, names...) }
}

// WithHyperparameters applies parameter overrides per model name before
// fitting.
func WithHyperparameters(overrides map[string]map[string]interface{}) TrainOption {
	return func(c *trainConfig) { c.overrides = overrides }
}

// WithoutOversampling disables SMOTE on the training set.
func WithoutOversampling() TrainOption {
	return func(c *trainConfig) { c.skipSMOTE = true }
}

// WithSMOTESeed overrides the oversampling seed.
func WithSMOTESeed(seed int) TrainOption {
	return func(c *trainConfig) { c.smoteSeed = seed }
}

// Train oversamples the training set, fits each selected model with
// balanced class weighting where supported, and scores it on the test set.
// A fit or predict failure aborts the whole run.
func Train(XTrain, XTest *mat.Dense, yTrain, yTest []int, opts ...TrainOption) (Results, error) {
	cfg := trainConfig{smoteSeed: preprocessing.DefaultSeed}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkDiversity("y_train", yTrain); err != nil {
		return nil, err
	}
	if err := checkDiversity("y_test", yTest); err != nil {
		return nil, err
	}

	if !cfg.skipSMOTE {
		var err error
		XTrain, yTrain, err = preprocessing.NewSMOTE(cfg.smoteSeed).FitResample(XTrain, yTrain)
		if err != nil {
			return nil, errors.Wrap(err, "oversampling training data")
		}
	}

	catalog := models.GetModels()
	names := selectNames(catalog, cfg.selected)

	results := make(Results, len(names))
	for _, name := range names {
		clf := catalog[name]

		if params, ok := cfg.overrides[name]; ok {
			if err := clf.SetParams(params); err != nil {
				return nil, errors.Wrapf(err, "configuring %s", name)
			}
		}
		if cw, ok := clf.(models.ClassWeighted); ok {
			cw.SetClassWeight("balanced")
		}

		stop := log.Timed("fit " + name)
		if err := clf.Fit(XTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fitting %s", name)
		}
		stop()

		yPred, err := clf.Predict(XTest)
		if err != nil {
			return nil, errors.Wrapf(err, "predicting with %s", name)
		}

		log.L().Debug().
			Str("model", name).
			Ints("unique_predictions", uniqueLabels(yPred)).
			Msg("prediction summary")

		scores, err := scorePredictions(yTest, yPred)
		if err != nil {
			return nil, errors.Wrapf(err, "scoring %s", name)
		}
		results[name] = scores
	}

	return results, nil
}

// checkDiversity rejects label vectors that cannot support classification.
func checkDiversity(vector string, y []int) error {
	n := len(uniqueLabels(y))
	if n < 2 {
		return errors.NewClassDiversityError(vector, n)
	}
	return nil
}

// selectNames resolves the requested subset against the catalog, keeping
// catalog order stable via sorting. Unknown names are dropped with a log
// line rather than an error so a typo skips one model, not the run.
func selectNames(catalog map[string]models.Classifier, selected []string) []string {
	var names []string
	if len(selected) == 0 {
		for name := range catalog {
			names = append(names, name)
		}
	} else {
		seen := make(map[string]bool, len(selected))
		for _, name := range selected {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := catalog[name]; !ok {
				log.L().Warn().Str("model", name).Msg("unknown model name, skipping")
				continue
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func scorePredictions(yTrue, yPred []int) (map[string]float64, error) {
	const zeroDivision = 1.0

	accuracy, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	precision, err := metrics.PrecisionWeighted(yTrue, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}
	recall, err := metrics.RecallWeighted(yTrue, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}
	f1, err := metrics.F1Weighted(yTrue, yPred, zeroDivision)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSELabels(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	return map[string]float64{
		"accuracy":  accuracy,
		"precision": precision,
		"recall":    recall,
		"f1":        f1,
		"rmse":      rmse,
	}, nil
}

func uniqueLabels(y []int) []int {
	set := make(map[int]struct{})
	for _, l := range y {
		set[l] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}
