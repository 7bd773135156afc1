package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads all sheets with raw cell values so date cells arrive as
// Excel serial numbers regardless of the number format applied.
func decodeXLSX(data []byte) ([]Sheet, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	var sheets []Sheet
	for _, name := range xl.GetSheetList() {
		rawRows, err := xl.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: toCells(rawRows)})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}
	return sheets, nil
}

func toCells(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
