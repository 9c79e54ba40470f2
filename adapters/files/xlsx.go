package files

import (
	"io"

	"github.com/xuri/excelize/v2"

	"taguchi/domain/core"
	"taguchi/domain/oa"
)

const sheet = "Sheet1"

// WriteXLSX writes an array to Sheet1 of a new workbook with a Factor1..FactorN
// header row
func WriteXLSX(w io.Writer, data oa.OAData) error {
	f := excelize.NewFile()
	defer f.Close()

	head := make([]any, data.Factors)
	for i, h := range header(data.Factors) {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return core.NewIOError("write xlsx", err)
	}

	for r, row := range data.Data {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return core.NewIOError("write xlsx", err)
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return core.NewIOError("write xlsx", err)
		}
	}

	if err := f.Write(w); err != nil {
		return core.NewIOError("write xlsx", err)
	}
	return nil
}

// ReadXLSX reads a level matrix from Sheet1, skipping a header row
func ReadXLSX(r io.Reader) ([][]int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewIOError("open xlsx", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.NewIOError("read xlsx", err)
	}

	matrix, err := parseRecords(rows)
	if err != nil {
		return nil, core.NewIOError("read xlsx", err)
	}
	return matrix, nil
}
