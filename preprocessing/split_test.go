package preprocessing

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeClassData(counts map[int]int) (*mat.Dense, []int) {
	total := 0
	for _, n := range counts {
		total += n
	}
	X := mat.NewDense(total, 2, nil)
	y := make([]int, 0, total)
	i := 0
	for label := 0; label < len(counts); label++ {
		for n := 0; n < counts[label]; n++ {
			X.Set(i, 0, float64(label))
			X.Set(i, 1, float64(i))
			y = append(y, label)
			i++
		}
	}
	return X, y
}

func TestStratifiedKFoldPreservesProportions(t *testing.T) {
	_, y := makeClassData(map[int]int{0: 90, 1: 10})

	folds := NewStratifiedKFold(5, true, DefaultSeed).Split(y)
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}

	for i, fold := range folds {
		counts := map[int]int{}
		for _, idx := range fold.TestIndices {
			counts[y[idx]]++
		}
		if counts[0] != 18 || counts[1] != 2 {
			t.Errorf("fold %d test counts = %v, want 18/2", i, counts)
		}
	}
}

func TestTrainTestSplitDisjointAndCovering(t *testing.T) {
	X, y := makeClassData(map[int]int{0: 60, 1: 40})

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y)
	if err != nil {
		t.Fatalf("TrainTestSplit: %v", err)
	}

	rTrain, _ := XTrain.Dims()
	rTest, _ := XTest.Dims()
	if rTrain != 80 || rTest != 20 {
		t.Fatalf("partition sizes = %d/%d, want 80/20", rTrain, rTest)
	}
	if len(yTrain) != rTrain || len(yTest) != rTest {
		t.Fatalf("label lengths do not match matrices")
	}

	// The second feature is a unique row id, so partitions can be checked
	// for disjointness through it.
	seen := make(map[float64]bool)
	for i := 0; i < rTrain; i++ {
		seen[XTrain.At(i, 1)] = true
	}
	for i := 0; i < rTest; i++ {
		if seen[XTest.At(i, 1)] {
			t.Fatalf("row %v appears in both partitions", XTest.At(i, 1))
		}
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := makeClassData(map[int]int{0: 30, 1: 30})

	_, XTest1, _, yTest1, err := TrainTestSplit(X, y)
	if err != nil {
		t.Fatalf("TrainTestSplit: %v", err)
	}
	_, XTest2, _, yTest2, err := TrainTestSplit(X, y)
	if err != nil {
		t.Fatalf("TrainTestSplit: %v", err)
	}

	if !mat.Equal(XTest1, XTest2) {
		t.Error("test partitions differ across runs with the same seed")
	}
	for i := range yTest1 {
		if yTest1[i] != yTest2[i] {
			t.Fatalf("test labels differ at %d", i)
		}
	}
}
