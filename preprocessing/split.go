package preprocessing

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/pkg/errors"
)

// DefaultSeed is the fixed seed used by the canonical train/test split so
// repeated runs on the same data produce the same partition.
const DefaultSeed = 42

// Fold holds the row indices of one cross-validation fold.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold splits samples into k folds while preserving the class
// proportions of y in every fold.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    int
}

// NewStratifiedKFold creates a stratified k-fold splitter. Fewer than two
// splits falls back to the 5-fold default.
func NewStratifiedKFold(nSplits int, shuffle bool, seed int) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split generates the folds for labels y.
func (skf *StratifiedKFold) Split(y []int) []Fold {
	// Group row indices by class.
	classIndices := make(map[int][]int)
	classOrder := make([]int, 0)
	for i, label := range y {
		if _, seen := classIndices[label]; !seen {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.Seed), uint64(skf.Seed)))
		for _, label := range classOrder {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.NSplits)

	// Distribute each class across the folds in turn.
	for _, label := range classOrder {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		currentIdx := 0
		for i := 0; i < skf.NSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && currentIdx < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[currentIdx])
				currentIdx++
			}
		}
	}

	// Train sets are the complement of each test set.
	for i := range folds {
		testSet := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			testSet[idx] = true
		}
		for j := range y {
			if !testSet[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}

	return folds
}

// TrainTestSplit performs one stratified 5-way split with the default seed
// and returns the first fold's partition: 4/5 train, 1/5 test, disjoint.
func TrainTestSplit(X *mat.Dense, y []int) (XTrain, XTest *mat.Dense, yTrain, yTest []int, err error) {
	r, _ := X.Dims()
	if r != len(y) {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", r, len(y), 0)
	}
	if r == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}

	skf := NewStratifiedKFold(5, true, DefaultSeed)
	fold := skf.Split(y)[0]

	XTrain, yTrain = TakeRows(X, y, fold.TrainIndices)
	XTest, yTest = TakeRows(X, y, fold.TestIndices)
	return XTrain, XTest, yTrain, yTest, nil
}

// TakeRows extracts the given rows of X and y into fresh storage.
func TakeRows(X *mat.Dense, y []int, indices []int) (*mat.Dense, []int) {
	_, c := X.Dims()
	sub := mat.NewDense(len(indices), c, nil)
	labels := make([]int, len(indices))
	for i, idx := range indices {
		sub.SetRow(i, X.RawRowView(idx))
		labels[i] = y[idx]
	}
	return sub, labels
}
