package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect",
			yTrue: []int{0, 1, 1, 0},
			yPred: []int{0, 1, 1, 0},
			want:  1.0,
		},
		{
			name:  "half",
			yTrue: []int{0, 1, 1, 0},
			yPred: []int{0, 1, 0, 1},
			want:  0.5,
		},
		{
			name:  "all wrong",
			yTrue: []int{0, 0},
			yPred: []int{1, 1},
			want:  0.0,
		},
		{
			name:    "length mismatch",
			yTrue:   []int{0, 1},
			yPred:   []int{0},
			wantErr: true,
		},
		{
			name:    "empty",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %t", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Accuracy = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestWeightedMetricsPerfectPrediction(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2}
	yPred := []int{0, 0, 1, 1, 2}

	for name, fn := range map[string]func([]int, []int, float64) (float64, error){
		"precision": PrecisionWeighted,
		"recall":    RecallWeighted,
		"f1":        F1Weighted,
	} {
		got, err := fn(yTrue, yPred, 0)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != 1.0 {
			t.Errorf("%s = %g, want 1.0", name, got)
		}
	}
}

func TestPrecisionWeightedZeroDivision(t *testing.T) {
	// Class 1 is never predicted so its precision is undefined; the
	// zero-division argument decides the substituted value.
	yTrue := []int{0, 1}
	yPred := []int{0, 0}

	got, err := PrecisionWeighted(yTrue, yPred, 1.0)
	if err != nil {
		t.Fatalf("PrecisionWeighted: %v", err)
	}
	// Class 0: precision 1/2 weight 1; class 1: undefined -> 1.0 weight 1.
	if want := 0.75; math.Abs(got-want) > 1e-12 {
		t.Errorf("PrecisionWeighted = %g, want %g", got, want)
	}

	got, err = PrecisionWeighted(yTrue, yPred, 0.0)
	if err != nil {
		t.Fatalf("PrecisionWeighted: %v", err)
	}
	if want := 0.25; math.Abs(got-want) > 1e-12 {
		t.Errorf("PrecisionWeighted = %g, want %g", got, want)
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 1}
	yPred := []int{0, 1, 1, 1, 0}

	counts, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("ConfusionMatrix: %v", err)
	}
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Fatalf("classes = %v", classes)
	}
	want := [][]int{{1, 1}, {1, 2}}
	for i := range want {
		for j := range want[i] {
			if counts[i][j] != want[i][j] {
				t.Errorf("counts[%d][%d] = %d, want %d", i, j, counts[i][j], want[i][j])
			}
		}
	}
}

func TestAUCBinary(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		scores  []float64
		want    float64
		wantErr bool
	}{
		{
			name:   "perfect classifier",
			yTrue:  []int{0, 0, 0, 1, 1, 1},
			scores: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:   1.0,
		},
		{
			name:   "worst classifier",
			yTrue:  []int{0, 0, 0, 1, 1, 1},
			scores: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:   0.0,
		},
		{
			name:   "random classifier",
			yTrue:  []int{0, 1, 0, 1},
			scores: []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5,
		},
		{
			name:   "typical case",
			yTrue:  []int{0, 0, 1, 1},
			scores: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.75,
		},
		{
			name:    "all positive labels",
			yTrue:   []int{1, 1, 1},
			scores:  []float64{0.1, 0.4, 0.8},
			wantErr: true,
		},
		{
			name:    "non-binary labels",
			yTrue:   []int{0, 2, 1},
			scores:  []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []int{0, 1},
			scores:  []float64{0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUCBinary(tt.yTrue, tt.scores)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %t", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AUCBinary = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestAUCOneVsRest(t *testing.T) {
	// Three classes, probabilities concentrated on the true class.
	yTrue := []int{0, 1, 2, 0, 1, 2}
	proba := mat.NewDense(6, 3, []float64{
		0.8, 0.1, 0.1,
		0.1, 0.8, 0.1,
		0.1, 0.1, 0.8,
		0.7, 0.2, 0.1,
		0.2, 0.7, 0.1,
		0.1, 0.2, 0.7,
	})

	got, err := AUCOneVsRest(yTrue, proba, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("AUCOneVsRest: %v", err)
	}
	if got != 1.0 {
		t.Errorf("AUCOneVsRest = %g, want 1.0", got)
	}
}

func TestAUCOneVsRestMissingClass(t *testing.T) {
	yTrue := []int{0, 0, 0}
	proba := mat.NewDense(3, 2, []float64{
		0.9, 0.1,
		0.8, 0.2,
		0.7, 0.3,
	})

	if _, err := AUCOneVsRest(yTrue, proba, []int{0, 1}); err == nil {
		t.Fatal("expected error when a class is absent from yTrue")
	}
}
