package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// MeanImputer replaces NaN cells in a numeric matrix with the column mean
// learned during Fit. A column with no observed values imputes to 0.
type MeanImputer struct {
	state *model.StateManager

	// Means holds the per-column mean over non-missing cells.
	Means []float64
}

// NewMeanImputer creates an unfitted MeanImputer.
func NewMeanImputer() *MeanImputer {
	return &MeanImputer{state: model.NewStateManager()}
}

// Fit computes per-column means ignoring NaN cells.
func (m *MeanImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MeanImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	m.Means = make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		count := 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count > 0 {
			m.Means[j] = sum / float64(count)
		}
	}

	m.state.SetFitted()
	return nil
}

// Transform replaces NaN cells with the fitted column means.
func (m *MeanImputer) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MeanImputer", "Transform")
	}

	r, c := X.Dims()
	if c != len(m.Means) {
		return nil, errors.NewDimensionError("MeanImputer.Transform", len(m.Means), c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = m.Means[j]
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// FitTransform fits the imputer and transforms the same data.
func (m *MeanImputer) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// ModeImputer replaces missing cells in categorical columns with the most
// frequent value learned during Fit. Ties break lexicographically so the
// result is deterministic.
type ModeImputer struct {
	state *model.StateManager

	// Modes holds the per-column most frequent value.
	Modes []string
}

// NewModeImputer creates an unfitted ModeImputer.
func NewModeImputer() *ModeImputer {
	return &ModeImputer{state: model.NewStateManager()}
}

// Fit computes the per-column mode. columns is column-major: columns[j][i]
// is row i of column j; the empty string marks a missing cell.
func (m *ModeImputer) Fit(columns [][]string) error {
	if len(columns) == 0 {
		return errors.NewModelError("ModeImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	m.Modes = make([]string, len(columns))
	for j, col := range columns {
		counts := make(map[string]int)
		for _, v := range col {
			if v != "" {
				counts[v]++
			}
		}

		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Strings(values)

		best := ""
		bestCount := -1
		for _, v := range values {
			if counts[v] > bestCount {
				best = v
				bestCount = counts[v]
			}
		}
		m.Modes[j] = best
	}

	m.state.SetFitted()
	return nil
}

// Transform fills missing cells with the fitted modes, returning new
// column slices.
func (m *ModeImputer) Transform(columns [][]string) ([][]string, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("ModeImputer", "Transform")
	}
	if len(columns) != len(m.Modes) {
		return nil, errors.NewDimensionError("ModeImputer.Transform", len(m.Modes), len(columns), 1)
	}

	out := make([][]string, len(columns))
	for j, col := range columns {
		filled := make([]string, len(col))
		for i, v := range col {
			if v == "" {
				v = m.Modes[j]
			}
			filled[i] = v
		}
		out[j] = filled
	}
	return out, nil
}

// FitTransform fits the imputer and transforms the same data.
func (m *ModeImputer) FitTransform(columns [][]string) ([][]string, error) {
	if err := m.Fit(columns); err != nil {
		return nil, err
	}
	return m.Transform(columns)
}
