package files

import (
	"encoding/csv"
	"io"

	"taguchi/domain/core"
	"taguchi/domain/oa"
)

// WriteCSV writes an array with a Factor1..FactorN header row
func WriteCSV(w io.Writer, data oa.OAData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(data.Factors)); err != nil {
		return core.NewIOError("write csv", err)
	}
	for _, row := range data.Data {
		if err := cw.Write(formatRow(row)); err != nil {
			return core.NewIOError("write csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return core.NewIOError("write csv", err)
	}
	return nil
}

// ReadCSV reads a level matrix. A non-numeric first line is skipped as a
// header and blank lines are ignored.
func ReadCSV(r io.Reader) ([][]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, core.NewIOError("read csv", err)
	}

	matrix, err := parseRecords(records)
	if err != nil {
		return nil, core.NewIOError("read csv", err)
	}
	return matrix, nil
}
