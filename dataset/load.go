package dataset

import (
	"path/filepath"
	"strings"

	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
)

// supportedExtensions lists the extensions Load dispatches on.
var supportedExtensions = []string{".csv", ".xlsx", ".xls", ".json", ".parquet", ".feather"}

// Load reads a tabular data file into a Table, selecting the parser from
// the case-insensitive file extension. Unrecognized extensions fail with
// an UnsupportedFormatError.
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		t   *Table
		err error
	)
	switch ext {
	case ".csv":
		t, err = loadCSV(path)
	case ".xlsx", ".xls":
		t, err = loadExcel(path)
	case ".json":
		t, err = loadJSON(path)
	case ".parquet":
		t, err = loadParquet(path)
	case ".feather":
		t, err = loadFeather(path)
	default:
		return nil, errors.NewUnsupportedFormatError(path, ext, supportedExtensions)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: %s", path)
	}

	log.L().Debug().
		Str("path", path).
		Str("format", ext).
		Int("rows", t.NumRows()).
		Int("cols", t.NumCols()).
		Msg("loaded dataset")
	return t, nil
}
