package files

import (
	"fmt"
	"strconv"
	"strings"
)

func header(factors int) []string {
	out := make([]string, factors)
	for i := range out {
		out[i] = fmt.Sprintf("Factor%d", i+1)
	}
	return out
}

func formatRow(row []int) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strconv.Itoa(v)
	}
	return out
}

func parseRow(record []string) ([]int, error) {
	row := make([]int, len(record))
	for i, cell := range record {
		v, err := strconv.ParseUint(strings.TrimSpace(cell), 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", cell)
		}
		row[i] = int(v)
	}
	return row, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRecords turns text records into a level matrix. A first record that
// does not parse is taken as a header and skipped; blank records are ignored.
func parseRecords(records [][]string) ([][]int, error) {
	var matrix [][]int
	for i, record := range records {
		if blank(record) {
			continue
		}

		row, err := parseRow(record)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		if len(matrix) > 0 && len(row) != len(matrix[0]) {
			return nil, fmt.Errorf("inconsistent row length on line %d: expected %d, got %d",
				i+1, len(matrix[0]), len(row))
		}
		matrix = append(matrix, row)
	}

	if len(matrix) == 0 {
		return nil, fmt.Errorf("no data found")
	}
	return matrix, nil
}
