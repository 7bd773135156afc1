package sheet

import (
	"ContabilidadSaas/internal/config"
	"ContabilidadSaas/internal/locale"
)

// Table is the tabular block found inside one sheet.
type Table struct {
	Sheet     string
	HeaderRow int // zero-based row index in the raw grid
	Headers   []string
	Rows      [][]any
}

// NormalizeName drops trailing underscores, so "categoria_" folds into "categoria".
var categoryTokens = []string{"categoria", "linea_de_negocio", "categoria_"}

// FindHeaderRow scans the first config.HeaderScanRows rows for the first one
// that names a date, a movement type and a category column.
func FindHeaderRow(grid [][]any) (int, bool) {
	limit := len(grid)
	if limit > config.HeaderScanRows {
		limit = config.HeaderScanRows
	}
	for i := 0; i < limit; i++ {
		if isHeaderRow(grid[i]) {
			return i, true
		}
	}
	return -1, false
}

func isHeaderRow(row []any) bool {
	tokens := make(map[string]struct{}, len(row))
	for _, cell := range row {
		if tok := NormalizeName(locale.CellString(cell)); tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	if !has(tokens, "fecha") {
		return false
	}
	if !has(tokens, "tipo") && !has(tokens, "tipo_de_movimiento") {
		return false
	}
	for _, tok := range categoryTokens {
		if has(tokens, tok) {
			return true
		}
	}
	return false
}

func has(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}

// ExtractTable locates the header row and returns the rows below it with
// blank rows and unnamed columns removed. ok is false when the sheet has no
// recognizable header within the scan window.
func ExtractTable(name string, grid [][]any) (*Table, bool) {
	hdr, ok := FindHeaderRow(grid)
	if !ok {
		return nil, false
	}

	raw := grid[hdr]
	width := len(raw)
	for _, row := range grid[hdr+1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	var keep []int
	var headers []string
	for c := 0; c < width; c++ {
		h := locale.CellString(cellAt(raw, c))
		if h == "" {
			continue
		}
		keep = append(keep, c)
		headers = append(headers, h)
	}

	t := &Table{Sheet: name, HeaderRow: hdr, Headers: headers}
	for _, row := range grid[hdr+1:] {
		if blankRow(row) {
			continue
		}
		out := make([]any, len(keep))
		for i, c := range keep {
			out[i] = cellAt(row, c)
		}
		t.Rows = append(t.Rows, out)
	}
	return t, true
}

func cellAt(row []any, c int) any {
	if c < len(row) {
		return row[c]
	}
	return nil
}

func blankRow(row []any) bool {
	for _, v := range row {
		if !locale.IsBlank(v) {
			return false
		}
	}
	return true
}
