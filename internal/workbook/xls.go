package workbook

import (
	"fmt"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
)

// xlsCell is the part of an xlsReader cell the decoder reads.
type xlsCell interface {
	GetString() string
	GetFloat64() float64
	GetType() string
}

// xlsCellValue keeps numeric records (NUMBER, RK, MULRK) as float64 so
// date-formatted cells arrive as Excel serials rather than display text.
func xlsCellValue(c xlsCell) any {
	if c == nil {
		return nil
	}
	typ := c.GetType()
	switch {
	case strings.HasSuffix(typ, "Blank"):
		return nil
	case strings.HasSuffix(typ, "Number"), strings.HasSuffix(typ, "Rk"):
		return c.GetFloat64()
	}
	s := c.GetString()
	if s == "" {
		return nil
	}
	return s
}

// decodeXLS reads legacy BIFF workbooks. xlsReader opens files by path, so
// the upload is spooled to a temp file first. The decoder panics on some
// truncated files, so panics are reported as decode errors.
func decodeXLS(data []byte) (sheets []Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("%w: xls decoder: %v", ErrUnreadable, r)
		}
	}()

	tmp, err := os.CreateTemp("", "ledger-*.xls")
	if err != nil {
		return nil, fmt.Errorf("spool xls: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spool xls: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("spool xls: %w", err)
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if book.GetNumberSheets() == 0 {
		return nil, fmt.Errorf("%w: no sheets found in xls file", ErrUnreadable)
	}

	for i := 0; i < book.GetNumberSheets(); i++ {
		ws, err := book.GetSheet(i)
		if err != nil || ws == nil {
			continue
		}
		var rows [][]any
		lastRow := int(ws.GetNumberRows())
		for r := 0; r <= lastRow; r++ {
			row, err := ws.GetRow(r)
			if err != nil || row == nil {
				rows = append(rows, nil)
				continue
			}
			cols := row.GetCols()
			cells := make([]any, 0, len(cols))
			for _, col := range cols {
				cells = append(cells, xlsCellValue(col))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, Sheet{Name: ws.GetName(), Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no readable sheets in xls file", ErrUnreadable)
	}
	return sheets, nil
}
