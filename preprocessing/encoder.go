package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/core/model"
	"github.com/modelbench/modelbench/pkg/errors"
)

// LabelEncoder maps target values onto a contiguous zero-based integer
// range. Classes are sorted so repeated fits on the same data produce the
// same encoding.
type LabelEncoder struct {
	state *model.StateManager

	// Classes holds the original values in encoding order.
	Classes []string
	mapping map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{state: model.NewStateManager()}
}

// Fit learns the class set from values.
func (le *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	set := make(map[string]struct{})
	for _, v := range values {
		set[v] = struct{}{}
	}

	le.Classes = make([]string, 0, len(set))
	for v := range set {
		le.Classes = append(le.Classes, v)
	}
	sort.Strings(le.Classes)

	le.mapping = make(map[string]int, len(le.Classes))
	for i, v := range le.Classes {
		le.mapping[v] = i
	}

	le.state.SetFitted()
	return nil
}

// Transform encodes values using the fitted class set. Unknown values are
// an error: the label space is fixed at fit time.
func (le *LabelEncoder) Transform(values []string) ([]int, error) {
	if !le.state.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]int, len(values))
	for i, v := range values {
		idx, ok := le.mapping[v]
		if !ok {
			return nil, errors.NewValidationError("label", "unseen label", v)
		}
		out[i] = idx
	}
	return out, nil
}

// FitTransform fits the encoder and encodes the same values.
func (le *LabelEncoder) FitTransform(values []string) ([]int, error) {
	if err := le.Fit(values); err != nil {
		return nil, err
	}
	return le.Transform(values)
}

// InverseTransform maps encoded labels back to the original values.
func (le *LabelEncoder) InverseTransform(labels []int) ([]string, error) {
	if !le.state.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(labels))
	for i, l := range labels {
		if l < 0 || l >= len(le.Classes) {
			return nil, errors.NewValidationError("label", "encoded label out of range", l)
		}
		out[i] = le.Classes[l]
	}
	return out, nil
}

// OneHotEncoder expands categorical columns into indicator features.
// Categories unseen during Fit encode to the all-zero vector rather than
// failing, matching handle_unknown="ignore".
type OneHotEncoder struct {
	state *model.StateManager

	// Categories holds, per input column, the known categories in
	// encoding order.
	Categories [][]string
	mappings   []map[string]int
	nOutput    int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{state: model.NewStateManager()}
}

// Fit learns the category sets. columns is column-major.
func (ohe *OneHotEncoder) Fit(columns [][]string) error {
	if len(columns) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	ohe.Categories = make([][]string, len(columns))
	ohe.mappings = make([]map[string]int, len(columns))
	ohe.nOutput = 0

	for j, col := range columns {
		set := make(map[string]struct{})
		for _, v := range col {
			set[v] = struct{}{}
		}
		cats := make([]string, 0, len(set))
		for v := range set {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		mapping := make(map[string]int, len(cats))
		for i, v := range cats {
			mapping[v] = i
		}

		ohe.Categories[j] = cats
		ohe.mappings[j] = mapping
		ohe.nOutput += len(cats)
	}

	ohe.state.SetFitted()
	return nil
}

// NumOutputFeatures returns the width of the encoded block.
func (ohe *OneHotEncoder) NumOutputFeatures() int { return ohe.nOutput }

// Transform encodes the columns into a dense indicator matrix.
func (ohe *OneHotEncoder) Transform(columns [][]string) (*mat.Dense, error) {
	if !ohe.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(columns) != len(ohe.Categories) {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", len(ohe.Categories), len(columns), 1)
	}

	nRows := 0
	if len(columns) > 0 {
		nRows = len(columns[0])
	}
	result := mat.NewDense(nRows, ohe.nOutput, nil)

	offset := 0
	for j, col := range columns {
		for i, v := range col {
			// Unknown category: row stays all-zero for this block.
			if idx, ok := ohe.mappings[j][v]; ok {
				result.Set(i, offset+idx, 1.0)
			}
		}
		offset += len(ohe.Categories[j])
	}
	return result, nil
}

// FitTransform fits the encoder and encodes the same columns.
func (ohe *OneHotEncoder) FitTransform(columns [][]string) (*mat.Dense, error) {
	if err := ohe.Fit(columns); err != nil {
		return nil, err
	}
	return ohe.Transform(columns)
}
