package dataset

import (
	"context"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/modelbench/modelbench/pkg/errors"
)

// loadParquet reads a parquet file through the Arrow bridge.
func loadParquet(path string) (*Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer tbl.Release()

	header := make([]string, tbl.NumCols())
	columns := make([][]cell, tbl.NumCols())
	for j := 0; j < int(tbl.NumCols()); j++ {
		header[j] = tbl.Schema().Field(j).Name
		for _, chunk := range tbl.Column(j).Data().Chunks() {
			var cerr error
			columns[j], cerr = appendArrowValues(columns[j], chunk)
			if cerr != nil {
				return nil, cerr
			}
		}
	}
	return columnsToTable(header, columns)
}

// loadFeather reads an Arrow IPC file (feather v2).
func loadFeather(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rdr.Close()

	schema := rdr.Schema()
	header := make([]string, schema.NumFields())
	for j := range header {
		header[j] = schema.Field(j).Name
	}

	columns := make([][]cell, len(header))
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for j := 0; j < int(rec.NumCols()); j++ {
			columns[j], err = appendArrowValues(columns[j], rec.Column(j))
			if err != nil {
				return nil, err
			}
		}
	}
	return columnsToTable(header, columns)
}

// appendArrowValues converts one Arrow array chunk into untyped cells.
func appendArrowValues(vals []cell, arr arrow.Array) ([]cell, error) {
	n := arr.Len()
	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			vals = append(vals, nil)
			continue
		}
		switch a := arr.(type) {
		case *array.Float64:
			vals = append(vals, a.Value(i))
		case *array.Float32:
			vals = append(vals, float64(a.Value(i)))
		case *array.Int64:
			vals = append(vals, float64(a.Value(i)))
		case *array.Int32:
			vals = append(vals, float64(a.Value(i)))
		case *array.Int16:
			vals = append(vals, float64(a.Value(i)))
		case *array.Int8:
			vals = append(vals, float64(a.Value(i)))
		case *array.Uint64:
			vals = append(vals, float64(a.Value(i)))
		case *array.Uint32:
			vals = append(vals, float64(a.Value(i)))
		case *array.Uint16:
			vals = append(vals, float64(a.Value(i)))
		case *array.Uint8:
			vals = append(vals, float64(a.Value(i)))
		case *array.Boolean:
			vals = append(vals, a.Value(i))
		case *array.String:
			vals = append(vals, a.Value(i))
		case *array.LargeString:
			vals = append(vals, a.Value(i))
		default:
			return nil, errors.NewValidationError("column", "unsupported arrow type", arr.DataType().Name())
		}
	}
	return vals, nil
}

// columnsToTable transposes per-column cells into rows and builds a table.
func columnsToTable(header []string, columns [][]cell) (*Table, error) {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "file has no data rows")
	}
	nRows := len(columns[0])
	rows := make([][]cell, nRows)
	for i := 0; i < nRows; i++ {
		row := make([]cell, len(header))
		for j := range header {
			row[j] = columns[j][i]
		}
		rows[i] = row
	}
	return buildTable(header, rows)
}
