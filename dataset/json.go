package dataset

import (
	"encoding/json"
	"os"

	"github.com/modelbench/modelbench/pkg/errors"
)

// loadJSON parses a records-oriented JSON file: an array of flat objects,
// one object per row. Keys missing from a record become missing cells.
func loadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "json must be an array of objects")
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "json has no records")
	}

	header := sortedKeys(records)
	rows := make([][]cell, len(records))
	for i, rec := range records {
		row := make([]cell, len(header))
		for j, key := range header {
			if v, ok := rec[key]; ok {
				row[j] = v
			}
		}
		rows[i] = row
	}
	return buildTable(header, rows)
}
