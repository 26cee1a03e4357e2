package metrics

import (
	"math"
	"testing"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "identical",
			yTrue: []float64{1, 2, 3},
			yPred: []float64{1, 2, 3},
			want:  0,
		},
		{
			name:  "constant offset",
			yTrue: []float64{1, 2, 3},
			yPred: []float64{2, 3, 4},
			want:  1,
		},
		{
			name:    "empty",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
		{
			name:    "mismatch",
			yTrue:   []float64{1},
			yPred:   []float64{1, 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %t", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("MSE = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRMSELabels(t *testing.T) {
	got, err := RMSELabels([]int{0, 0, 1, 1}, []int{0, 1, 1, 0})
	if err != nil {
		t.Fatalf("RMSELabels: %v", err)
	}
	if want := math.Sqrt(0.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSELabels = %g, want %g", got, want)
	}
}
