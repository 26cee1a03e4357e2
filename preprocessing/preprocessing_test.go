package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	// First column: mean 2.5, each column of the output has mean 0.
	for j := 0; j < 2; j++ {
		sum := 0.0
		for i := 0; i < 4; i++ {
			sum += scaled.At(i, j)
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("column %d mean = %g, want 0", j, sum/4)
		}
	}

	// Constant column keeps scale 1 instead of dividing by zero.
	if scaler.Scale[1] != 1.0 {
		t.Errorf("constant column scale = %g, want 1", scaler.Scale[1])
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	_, err := NewStandardScaler().Transform(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("expected NotFittedError")
	}
}

func TestMeanImputer(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, math.NaN(),
		3, 4,
		math.NaN(), 8,
	})

	imputed, err := NewMeanImputer().FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	if got := imputed.At(2, 0); got != 2 {
		t.Errorf("imputed (2,0) = %g, want column mean 2", got)
	}
	if got := imputed.At(0, 1); got != 6 {
		t.Errorf("imputed (0,1) = %g, want column mean 6", got)
	}
}

func TestModeImputer(t *testing.T) {
	cols := [][]string{{"red", "", "red", "blue"}}

	filled, err := NewModeImputer().FitTransform(cols)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	if filled[0][1] != "red" {
		t.Errorf("imputed value = %q, want mode %q", filled[0][1], "red")
	}
	// Input is not mutated.
	if cols[0][1] != "" {
		t.Errorf("input was mutated")
	}
}

func TestLabelEncoderDeterministicAndContiguous(t *testing.T) {
	values := []string{"cat", "dog", "cat", "fish", "dog"}

	first, err := NewLabelEncoder().FitTransform(values)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	second, err := NewLabelEncoder().FitTransform(values)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("encoding not deterministic at %d: %d vs %d", i, first[i], second[i])
		}
	}

	seen := make(map[int]bool)
	for _, l := range first {
		seen[l] = true
	}
	for l := 0; l < len(seen); l++ {
		if !seen[l] {
			t.Errorf("label space not contiguous: %d missing", l)
		}
	}
}

func TestLabelEncoderInverse(t *testing.T) {
	le := NewLabelEncoder()
	labels, err := le.FitTransform([]string{"b", "a", "b"})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	back, err := le.InverseTransform(labels)
	if err != nil {
		t.Fatalf("InverseTransform: %v", err)
	}
	want := []string{"b", "a", "b"}
	for i := range want {
		if back[i] != want[i] {
			t.Errorf("round trip[%d] = %q, want %q", i, back[i], want[i])
		}
	}
}

func TestOneHotEncoderUnknownCategory(t *testing.T) {
	ohe := NewOneHotEncoder()
	if _, err := ohe.FitTransform([][]string{{"a", "b", "a"}}); err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	out, err := ohe.Transform([][]string{{"zzz"}})
	if err != nil {
		t.Fatalf("Transform with unseen category must not fail: %v", err)
	}
	for j := 0; j < ohe.NumOutputFeatures(); j++ {
		if out.At(0, j) != 0 {
			t.Errorf("unseen category encoded non-zero at %d", j)
		}
	}
}

func TestOneHotEncoderOneNonzeroPerColumn(t *testing.T) {
	ohe := NewOneHotEncoder()
	out, err := ohe.FitTransform([][]string{{"x", "y"}, {"p", "p"}})
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	r, c := out.Dims()
	if c != 3 { // {x,y} + {p}
		t.Fatalf("output width = %d, want 3", c)
	}
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += out.At(i, j)
		}
		if sum != 2 { // one indicator per input column
			t.Errorf("row %d has %g active indicators, want 2", i, sum)
		}
	}
}
