package training

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/parallel"
	"github.com/modelbench/modelbench/metrics"
	"github.com/modelbench/modelbench/models"
	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
	"github.com/modelbench/modelbench/preprocessing"
)

// GridSearchCV exhaustively evaluates a parameter grid with stratified
// k-fold cross-validation and refits the best candidate on the full data.
type GridSearchCV struct {
	NewModel func() models.Classifier
	Grid     map[string][]interface{}
	NSplits  int
	Seed     int

	BestParams map[string]interface{}
	BestScore  float64
	BestModel  models.Classifier
}

// NewGridSearchCV builds a search over grid for models produced by
// newModel, using 5 folds and the default seed.
func NewGridSearchCV(newModel func() models.Classifier, grid map[string][]interface{}) *GridSearchCV {
	return &GridSearchCV{
		NewModel: newModel,
		Grid:     grid,
		NSplits:  5,
		Seed:     preprocessing.DefaultSeed,
	}
}

// Fit scores every parameter combination by mean cross-validated accuracy,
// evaluating candidates in parallel, then refits the winner on all of X.
func (gs *GridSearchCV) Fit(X *mat.Dense, y []int) error {
	candidates := expandGrid(gs.Grid)
	if len(candidates) == 0 {
		return errors.WithStack(errors.ErrEmptyGrid)
	}

	folds := preprocessing.NewStratifiedKFold(gs.NSplits, true, gs.Seed).Split(y)

	scores := make([]float64, len(candidates))
	var mu sync.Mutex
	var firstErr error

	parallel.ForEach(len(candidates), func(c int) {
		score, err := gs.crossValidate(X, y, folds, candidates[c])
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		scores[c] = score
	})
	if firstErr != nil {
		return firstErr
	}

	best := 0
	for c := range candidates {
		if scores[c] > scores[best] {
			best = c
		}
	}
	gs.BestParams = candidates[best]
	gs.BestScore = scores[best]

	log.L().Debug().
		Int("candidates", len(candidates)).
		Float64("best_score", gs.BestScore).
		Msg("grid search finished")

	gs.BestModel = gs.NewModel()
	if err := gs.BestModel.SetParams(gs.BestParams); err != nil {
		return err
	}
	return gs.BestModel.Fit(X, y)
}

func (gs *GridSearchCV) crossValidate(X *mat.Dense, y []int, folds []preprocessing.Fold,
	params map[string]interface{}) (float64, error) {

	var total float64
	for _, fold := range folds {
		clf := gs.NewModel()
		if err := clf.SetParams(params); err != nil {
			return 0, err
		}

		XTrain, yTrain := preprocessing.TakeRows(X, y, fold.TrainIndices)
		XTest, yTest := preprocessing.TakeRows(X, y, fold.TestIndices)

		if err := clf.Fit(XTrain, yTrain); err != nil {
			return 0, err
		}
		yPred, err := clf.Predict(XTest)
		if err != nil {
			return 0, err
		}
		acc, err := metrics.Accuracy(yTest, yPred)
		if err != nil {
			return 0, err
		}
		total += acc
	}
	return total / float64(len(folds)), nil
}

// expandGrid builds the cartesian product of the grid values. Parameters
// are ordered by name so candidate order is deterministic.
func expandGrid(grid map[string][]interface{}) []map[string]interface{} {
	if len(grid) == 0 {
		return nil
	}

	params := make([]string, 0, len(grid))
	for p := range grid {
		if len(grid[p]) == 0 {
			return nil
		}
		params = append(params, p)
	}
	sort.Strings(params)

	out := []map[string]interface{}{{}}
	for _, p := range params {
		var next []map[string]interface{}
		for _, base := range out {
			for _, v := range grid[p] {
				candidate := make(map[string]interface{}, len(base)+1)
				for k, bv := range base {
					candidate[k] = bv
				}
				candidate[p] = v
				next = append(next, candidate)
			}
		}
		out = next
	}
	return out
}
