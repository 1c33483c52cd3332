package artifact

import (
	"encoding/csv"
	"os"
	"strings"

	"analytics-assistant-be/internal/apperrors"
)

// loadCSV reads a CSV file, returning its header row and data rows
// separately. There is no CSV library anywhere in the reference corpus, so
// this uses the standard library encoding/csv directly.
func loadCSV(path string) (columns []string, rows [][]string, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, nil, openErr
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, readErr := r.ReadAll()
	if readErr != nil {
		return nil, nil, readErr
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// applyFilter reduces rows to those matching a simple "column == 'value'"
// predicate, the only shape the catalog's filter field ever takes (mirroring
// the pandas .query() filters in the original catalog, minus the general
// expression evaluator that a Go port has no need for).
func applyFilter(columns []string, rows [][]string, filter string) ([][]string, string, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return rows, "", nil
	}

	parts := strings.SplitN(filter, "==", 2)
	if len(parts) != 2 {
		return nil, "", apperrors.Newf(apperrors.ArtifactUnavailable, "unsupported filter expression %q", filter)
	}
	col := strings.TrimSpace(parts[0])
	value := strings.Trim(strings.TrimSpace(parts[1]), `'"`)

	colIdx := -1
	for i, c := range columns {
		if c == col {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		return nil, "", apperrors.Newf(apperrors.ArtifactUnavailable, "filter column %q not present", col)
	}

	var out [][]string
	for _, row := range rows {
		if colIdx < len(row) && row[colIdx] == value {
			out = append(out, row)
		}
	}
	return out, value, nil
}
