package dataset

import (
	"encoding/csv"
	"os"

	"github.com/modelbench/modelbench/pkg/errors"
)

// loadCSV parses a comma-separated file. The first record is the header.
func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv has no data rows")
	}

	header := records[0]
	rows := make([][]cell, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]cell, len(header))
		for j := range header {
			if j < len(rec) {
				row[j] = rec[j]
			}
		}
		rows[i] = row
	}
	return buildTable(header, rows)
}
