package dataset

import (
	"github.com/xuri/excelize/v2"

	"github.com/modelbench/modelbench/pkg/errors"
)

// loadExcel parses the first sheet of a spreadsheet file. The first row is
// the header.
func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "sheet has no data rows")
	}

	header := records[0]
	rows := make([][]cell, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]cell, len(header))
		// GetRows trims trailing empty cells, so short records are padded
		// with missing values.
		for j := range header {
			if j < len(rec) {
				row[j] = rec[j]
			}
		}
		rows[i] = row
	}
	return buildTable(header, rows)
}
