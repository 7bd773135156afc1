package sheet

import (
	"reflect"
	"testing"
)

func TestExtractTableHeaderAtRowThree(t *testing.T) {
	grid := [][]any{
		{"Reporte de movimientos"},
		{"Empresa Demo", "", "Enero"},
		{"Fecha", "Tipo", "Categoría", "", "Monto"},
		{"2025-01-05", "Ingreso", "Ventas", "x", "1.000,00"},
		{"", "", "", "", ""},
		{"2025-01-06", "Egreso", "Servicios", "", "250"},
	}

	tbl, ok := ExtractTable("Hoja1", grid)
	if !ok {
		t.Fatal("expected a table")
	}
	if tbl.HeaderRow != 2 {
		t.Errorf("HeaderRow = %d, want 2", tbl.HeaderRow)
	}
	wantHeaders := []string{"Fecha", "Tipo", "Categoría", "Monto"}
	if !reflect.DeepEqual(tbl.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", tbl.Headers, wantHeaders)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(tbl.Rows))
	}
	if got := tbl.Rows[0][3]; got != "1.000,00" {
		t.Errorf("amount cell = %v", got)
	}
	if got := tbl.Rows[1][2]; got != "Servicios" {
		t.Errorf("category cell = %v", got)
	}
}

func TestExtractTableAlternateVocabulary(t *testing.T) {
	grid := [][]any{
		{"FECHA", "TIPO DE MOVIMIENTO", "LÍNEA DE NEGOCIO", "MONTO"},
		{"2025-02-01", "Egreso", "Arriendo", "500"},
	}
	tbl, ok := ExtractTable("S", grid)
	if !ok || tbl.HeaderRow != 0 || len(tbl.Rows) != 1 {
		t.Fatalf("unexpected extraction: ok=%v tbl=%+v", ok, tbl)
	}
}

func TestExtractTableShortRowsArePadded(t *testing.T) {
	grid := [][]any{
		{"Fecha", "Tipo", "Categoria", "Monto", "Comentarios"},
		{"2025-01-05", "Ingreso", "Ventas", "10"},
	}
	tbl, ok := ExtractTable("S", grid)
	if !ok {
		t.Fatal("expected a table")
	}
	if len(tbl.Rows[0]) != 5 || tbl.Rows[0][4] != nil {
		t.Errorf("row = %#v", tbl.Rows[0])
	}
}

func TestExtractTableNoHeader(t *testing.T) {
	tests := map[string][][]any{
		"empty":            nil,
		"missing category": {{"Fecha", "Tipo", "Monto"}},
		"missing type":     {{"Fecha", "Categoria", "Monto"}},
	}
	for name, grid := range tests {
		t.Run(name, func(t *testing.T) {
			if _, ok := ExtractTable("S", grid); ok {
				t.Error("expected no table")
			}
		})
	}
}

func TestFindHeaderRowScanWindow(t *testing.T) {
	grid := make([][]any, 45)
	grid[41] = []any{"Fecha", "Tipo", "Categoria", "Monto"}
	if _, ok := FindHeaderRow(grid); ok {
		t.Error("header beyond the scan window must not be found")
	}

	grid[39] = []any{"Fecha", "Tipo", "Categoria", "Monto"}
	if idx, ok := FindHeaderRow(grid); !ok || idx != 39 {
		t.Errorf("FindHeaderRow = %d, %v; want 39, true", idx, ok)
	}
}
