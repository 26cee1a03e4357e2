// Package dataset loads tabular data files into an in-memory column store.
// Format dispatch is by file extension; see Load.
package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/modelbench/modelbench/pkg/errors"
)

// ColumnKind distinguishes numeric from categorical columns. Kinds are
// inferred at load time: a column is numeric when every non-missing cell
// parses as a float.
type ColumnKind int

const (
	// KindNumeric marks a float64-valued column.
	KindNumeric ColumnKind = iota
	// KindString marks a categorical (string-valued) column.
	KindString
)

// Column is a single named column. Numeric columns store values in Floats
// (missing cells are NaN); string columns store values in Strings (missing
// cells are ""). Missing marks missing cells for both kinds.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Strings []string
	Missing []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Table is an immutable column-oriented table. All columns have the same
// row count.
type Table struct {
	cols  []*Column
	index map[string]int
	nRows int
}

// NewTable assembles a table from columns. All columns must share the same
// length and names must be unique.
func NewTable(cols []*Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.NewTable")
	}
	nRows := cols[0].Len()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Len() != nRows {
			return nil, errors.NewDimensionError("dataset.NewTable", nRows, c.Len(), 0)
		}
		if _, dup := index[c.Name]; dup {
			return nil, errors.NewValidationError("column", "duplicate column name", c.Name)
		}
		index[c.Name] = i
	}
	return &Table{cols: cols, index: index, nRows: nRows}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "no such column", name)
	}
	return t.cols[i], nil
}

// DropColumn returns a new table without the named column. The underlying
// column data is shared, not copied.
func (t *Table) DropColumn(name string) (*Table, error) {
	if _, ok := t.index[name]; !ok {
		return nil, errors.NewValidationError("column", "no such column", name)
	}
	kept := make([]*Column, 0, len(t.cols)-1)
	for _, c := range t.cols {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	return NewTable(kept)
}

// cell is an untyped parsed value used while assembling a table. nil means
// missing.
type cell interface{}

// buildTable infers column kinds from raw cells and assembles a Table.
func buildTable(header []string, rows [][]cell) (*Table, error) {
	if len(header) == 0 || len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.buildTable")
	}

	nRows := len(rows)
	cols := make([]*Column, len(header))

	for j, name := range header {
		numeric := true
		for i := 0; i < nRows && numeric; i++ {
			switch v := rows[i][j].(type) {
			case nil, float64, bool:
				// compatible with a numeric column
			case string:
				if !isNumericString(v) {
					numeric = false
				}
			default:
				numeric = false
			}
		}

		col := &Column{Name: name, Missing: make([]bool, nRows)}
		if numeric {
			col.Kind = KindNumeric
			col.Floats = make([]float64, nRows)
			for i := 0; i < nRows; i++ {
				f, miss := toFloat(rows[i][j])
				col.Floats[i] = f
				col.Missing[i] = miss
			}
		} else {
			col.Kind = KindString
			col.Strings = make([]string, nRows)
			for i := 0; i < nRows; i++ {
				s, miss := toString(rows[i][j])
				col.Strings[i] = s
				col.Missing[i] = miss
			}
		}
		cols[j] = col
	}

	return NewTable(cols)
}

func isNumericString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true // missing, compatible with any kind
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func toFloat(v cell) (val float64, missing bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		if math.IsNaN(x) {
			return math.NaN(), true
		}
		return x, false
	case bool:
		if x {
			return 1, false
		}
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, false
	default:
		return math.NaN(), true
	}
}

func toString(v cell) (val string, missing bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		s := strings.TrimSpace(x)
		return s, s == ""
	case float64:
		if math.IsNaN(x) {
			return "", true
		}
		return strconv.FormatFloat(x, 'g', -1, 64), false
	case bool:
		return strconv.FormatBool(x), false
	default:
		return "", true
	}
}

// sortedKeys returns the sorted union of keys across JSON records, giving
// a deterministic column order.
func sortedKeys(records []map[string]interface{}) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
