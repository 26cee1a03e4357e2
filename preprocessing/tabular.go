package preprocessing

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/modelbench/modelbench/dataset"
	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
)

// PreprocessTable turns a loaded table into model-ready partitions:
//
//  1. the target column is split off and label-encoded to 0..k-1,
//  2. remaining columns are partitioned by dtype,
//  3. numeric columns are mean-imputed and standardized,
//  4. categorical columns are mode-imputed and one-hot encoded,
//  5. both blocks are concatenated into one dense matrix,
//  6. a stratified 5-way split yields the 4/5 train / 1/5 test partition.
//
// Encoders and scalers are fitted on the full data before the split, so
// train and test share one label and feature space.
func PreprocessTable(t *dataset.Table, target string) (XTrain, XTest *mat.Dense, yTrain, yTest []int, err error) {
	defer log.Timed("preprocess_table")()

	targetCol, err := t.Column(target)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	y, err := encodeTarget(targetCol)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	features, err := t.DropColumn(target)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var (
		numericCols []*dataset.Column
		stringCols  [][]string
	)
	for _, name := range features.ColumnNames() {
		col, cerr := features.Column(name)
		if cerr != nil {
			return nil, nil, nil, nil, cerr
		}
		if col.Kind == dataset.KindNumeric {
			numericCols = append(numericCols, col)
		} else {
			stringCols = append(stringCols, col.Strings)
		}
	}

	blocks := make([]*mat.Dense, 0, 2)

	if len(numericCols) > 0 {
		raw := mat.NewDense(t.NumRows(), len(numericCols), nil)
		for j, col := range numericCols {
			for i, v := range col.Floats {
				raw.Set(i, j, v)
			}
		}

		imputed, ierr := NewMeanImputer().FitTransform(raw)
		if ierr != nil {
			return nil, nil, nil, nil, ierr
		}
		scaled, serr := NewStandardScaler().FitTransform(imputed)
		if serr != nil {
			return nil, nil, nil, nil, serr
		}
		blocks = append(blocks, scaled)
	}

	if len(stringCols) > 0 {
		filled, ferr := NewModeImputer().FitTransform(stringCols)
		if ferr != nil {
			return nil, nil, nil, nil, ferr
		}
		encoded, eerr := NewOneHotEncoder().FitTransform(filled)
		if eerr != nil {
			return nil, nil, nil, nil, eerr
		}
		blocks = append(blocks, encoded)
	}

	if len(blocks) == 0 {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrEmptyData, "table has no feature columns")
	}

	X := hstack(blocks)

	log.L().Debug().
		Int("rows", t.NumRows()).
		Int("numeric_features", len(numericCols)).
		Int("categorical_columns", len(stringCols)).
		Msg("assembled feature matrix")

	return TrainTestSplit(X, y)
}

// encodeTarget label-encodes the target column. Numeric targets are
// canonicalized through their string form first so the encoder handles
// both kinds uniformly.
func encodeTarget(col *dataset.Column) ([]int, error) {
	values := make([]string, col.Len())
	if col.Kind == dataset.KindNumeric {
		for i, v := range col.Floats {
			if col.Missing[i] {
				return nil, errors.NewValidationError("target", "target column has missing values", i)
			}
			values[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	} else {
		for i, v := range col.Strings {
			if col.Missing[i] {
				return nil, errors.NewValidationError("target", "target column has missing values", i)
			}
			values[i] = v
		}
	}
	return NewLabelEncoder().FitTransform(values)
}

// hstack concatenates blocks side by side.
func hstack(blocks []*mat.Dense) *mat.Dense {
	if len(blocks) == 1 {
		return blocks[0]
	}

	rows, _ := blocks[0].Dims()
	total := 0
	for _, b := range blocks {
		_, c := b.Dims()
		total += c
	}

	out := mat.NewDense(rows, total, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, offset+j, b.At(i, j))
			}
		}
		offset += c
	}
	return out
}
