package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/core/parallel"
	"github.com/modelbench/modelbench/pkg/errors"
)

// forestEnsemble holds the shared machinery of bagged tree ensembles.
// RandomForest draws bootstrap samples and scans sqrt(features) per split;
// ExtraTrees uses the full sample and random thresholds.
type forestEnsemble struct {
	state *model.StateManager

	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	seed            int
	classWeight     string

	bootstrap        bool
	randomThresholds bool

	trees     []*treeNode
	classes   []int
	nFeatures int
}

func newForestEnsemble(bootstrap, randomThresholds bool) forestEnsemble {
	return forestEnsemble{
		state:            model.NewStateManager(),
		nEstimators:      100,
		minSamplesSplit:  2,
		seed:             42,
		bootstrap:        bootstrap,
		randomThresholds: randomThresholds,
	}
}

// SetClassWeight implements ClassWeighted.
func (f *forestEnsemble) SetClassWeight(mode string) { f.classWeight = mode }

// Fit grows the trees, one seed stream per tree so fitting order does not
// affect the result under parallelism.
func (f *forestEnsemble) fit(op string, X mat.Matrix, y []int) error {
	if err := checkXY(op, X, y); err != nil {
		return err
	}

	Xd := toDense(X)
	nSamples, nFeatures := Xd.Dims()
	f.nFeatures = nFeatures
	f.classes = uniqueClasses(y)

	classIndex := make(map[int]int, len(f.classes))
	for ci, c := range f.classes {
		classIndex[c] = ci
	}
	weights := balancedWeights(y, f.classWeight)
	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f.trees = make([]*treeNode, f.nEstimators)

	parallel.ForEach(f.nEstimators, func(t int) {
		rng := rand.New(rand.NewPCG(uint64(f.seed), uint64(t)))

		rows := make([]int, nSamples)
		if f.bootstrap {
			for i := range rows {
				rows[i] = rng.IntN(nSamples)
			}
		} else {
			for i := range rows {
				rows[i] = i
			}
		}

		f.trees[t] = growTree(Xd, y, weights, classIndex, rows, 0, cartConfig{
			maxDepth:         f.maxDepth,
			minSamplesSplit:  f.minSamplesSplit,
			maxFeatures:      maxFeatures,
			randomThresholds: f.randomThresholds,
			rng:              rng,
		})
	})

	f.state.SetDimensions(nFeatures, nSamples)
	f.state.SetFitted()
	return nil
}

// predictProba averages leaf distributions across trees.
func (f *forestEnsemble) predictProba(op string, X mat.Matrix) (*mat.Dense, error) {
	if !f.state.IsFitted() {
		return nil, errors.NewNotFittedError(op, "PredictProba")
	}
	if err := checkPredict(op, X, f.nFeatures); err != nil {
		return nil, err
	}

	Xd := toDense(X)
	r, _ := Xd.Dims()
	proba := mat.NewDense(r, len(f.classes), nil)

	for i := 0; i < r; i++ {
		row := Xd.RawRowView(i)
		for _, tree := range f.trees {
			dist := treePredictDist(tree, row)
			for ci, p := range dist {
				proba.Set(i, ci, proba.At(i, ci)+p)
			}
		}
		// Renormalize so accumulated rounding cannot push a row past 1.
		var sum float64
		for ci := range f.classes {
			sum += proba.At(i, ci)
		}
		for ci := range f.classes {
			proba.Set(i, ci, proba.At(i, ci)/sum)
		}
	}
	return proba, nil
}

func (f *forestEnsemble) predict(op string, X mat.Matrix) ([]int, error) {
	proba, err := f.predictProba(op, X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = f.classes[argmax(proba.RawRowView(i))]
	}
	return out, nil
}

// Classes implements ProbabilityClassifier.
func (f *forestEnsemble) Classes() []int { return append([]int(nil), f.classes...) }

// GetParams implements Classifier.
func (f *forestEnsemble) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      f.nEstimators,
		"max_depth":         f.maxDepth,
		"min_samples_split": f.minSamplesSplit,
		"random_state":      f.seed,
		"class_weight":      f.classWeight,
	}
}

// SetParams implements Classifier.
func (f *forestEnsemble) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := paramInt(value)
			if !ok || v < 1 {
				return errors.NewValidationError(key, "must be a positive integer", value)
			}
			f.nEstimators = v
		case "max_depth":
			v, ok := paramInt(value)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative integer", value)
			}
			f.maxDepth = v
		case "min_samples_split":
			v, ok := paramInt(value)
			if !ok || v < 2 {
				return errors.NewValidationError(key, "must be an integer of at least 2", value)
			}
			f.minSamplesSplit = v
		case "random_state":
			v, ok := paramInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.seed = v
		case "class_weight":
			str, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			f.classWeight = str
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// RandomForest is a bagged ensemble of CART trees with bootstrap sampling
// and per-split feature subsampling.
type RandomForest struct {
	forestEnsemble
}

// NewRandomForest creates an unfitted random forest.
func NewRandomForest() *RandomForest {
	return &RandomForest{forestEnsemble: newForestEnsemble(true, false)}
}

// Name implements Classifier.
func (f *RandomForest) Name() string { return "Random Forest" }

// Fit implements Classifier.
func (f *RandomForest) Fit(X mat.Matrix, y []int) error {
	return f.fit("RandomForest.Fit", X, y)
}

// Predict implements Classifier.
func (f *RandomForest) Predict(X mat.Matrix) ([]int, error) {
	return f.predict("RandomForest.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (f *RandomForest) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return f.predictProba("RandomForest.PredictProba", X)
}

// ExtraTrees is an extremely randomized tree ensemble. Trees see the full
// training set and split on thresholds drawn uniformly at random.
type ExtraTrees struct {
	forestEnsemble
}

// NewExtraTrees creates an unfitted extra-trees ensemble.
func NewExtraTrees() *ExtraTrees {
	return &ExtraTrees{forestEnsemble: newForestEnsemble(false, true)}
}

// Name implements Classifier.
func (f *ExtraTrees) Name() string { return "Extra Trees" }

// Fit implements Classifier.
func (f *ExtraTrees) Fit(X mat.Matrix, y []int) error {
	return f.fit("ExtraTrees.Fit", X, y)
}

// Predict implements Classifier.
func (f *ExtraTrees) Predict(X mat.Matrix) ([]int, error) {
	return f.predict("ExtraTrees.Predict", X)
}

// PredictProba implements ProbabilityClassifier.
func (f *ExtraTrees) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return f.predictProba("ExtraTrees.PredictProba", X)
}
