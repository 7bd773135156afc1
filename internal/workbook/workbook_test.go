package workbook

import (
	"errors"
	"testing"
	"time"

	"ContabilidadSaas/internal/locale"

	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Enero"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Enero", "A1", &[]any{"Reporte"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Enero", "A3", &[]any{"Fecha", "Tipo", "Categoria", "Monto"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Enero", "A4", &[]any{"2025-01-05", "Ingreso", "Ventas", 1500.5}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Febrero"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Febrero", "A1", &[]any{"Fecha", "Tipo", "Categoria", "Monto"}); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeXLSXAllSheets(t *testing.T) {
	sheets, err := Decode("movimientos.xlsx", buildXLSX(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("got %d sheets, want 2", len(sheets))
	}
	if sheets[0].Name != "Enero" || sheets[1].Name != "Febrero" {
		t.Errorf("sheet names = %q, %q", sheets[0].Name, sheets[1].Name)
	}
	rows := sheets[0].Rows
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if got := rows[2][2]; got != "Categoria" {
		t.Errorf("header cell = %v", got)
	}
	if got := rows[3][3]; got != "1500.5" {
		t.Errorf("amount cell = %v", got)
	}
}

func TestDecodeProbesMislabeledFile(t *testing.T) {
	sheets, err := Decode("export.bin", buildXLSX(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sheets) != 2 {
		t.Errorf("got %d sheets, want 2", len(sheets))
	}
}

func TestDecodeCSVDelimiters(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"comma", "Fecha,Tipo,Categoria,Monto\n2025-01-05,Ingreso,Ventas,1500\n"},
		{"semicolon with decimal commas", "Fecha;Tipo;Categoria;Monto\n2025-01-05;Ingreso;Ventas;1.500,25\n"},
		{"bom", "\xEF\xBB\xBFFecha,Tipo,Categoria,Monto\n2025-01-05,Ingreso,Ventas,1500\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheets, err := Decode("datos.csv", []byte(tt.data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(sheets) != 1 || sheets[0].Name != "datos" {
				t.Fatalf("unexpected sheets %+v", sheets)
			}
			rows := sheets[0].Rows
			if len(rows) != 2 || len(rows[0]) != 4 {
				t.Fatalf("unexpected grid %v", rows)
			}
			if rows[0][0] != "Fecha" {
				t.Errorf("first header = %q", rows[0][0])
			}
		})
	}
}

func TestDecodeCSVWindows1252(t *testing.T) {
	data := []byte("Fecha;Tipo;Categor\xeda;Monto\n")
	sheets, err := Decode("latin.csv", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := sheets[0].Rows[0][2]; got != "Categoría" {
		t.Errorf("header = %q", got)
	}
}

func TestDecodeRejectsEmptyAndBinary(t *testing.T) {
	if _, err := Decode("vacio.xlsx", nil); !errors.Is(err, ErrUnreadable) {
		t.Errorf("empty file error = %v", err)
	}
	if _, err := Decode("roto.xlsx", []byte("PK\x03\x04\x00\x00garbage")); !errors.Is(err, ErrUnreadable) {
		t.Errorf("corrupt file error = %v", err)
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.xlsx": true, "B.XLS": true, "c.csv": true, "d.pdf": false, "noext": false,
	} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v", name, got)
		}
	}
}

type fakeXLSCell struct {
	typ string
	str string
	num float64
}

func (c fakeXLSCell) GetString() string { return c.str }
func (c fakeXLSCell) GetFloat64() float64 { return c.num }
func (c fakeXLSCell) GetType() string   { return c.typ }

func TestXLSCellValue(t *testing.T) {
	tests := []struct {
		name string
		cell xlsCell
		want any
	}{
		// A date-formatted NUMBER cell must reach the date parser as a serial.
		{name: "date formatted number", cell: fakeXLSCell{typ: "*record.Number", str: "2025.01", num: 45672}, want: 45672.0},
		{name: "rk amount", cell: fakeXLSCell{typ: "*record.Rk", str: "1500.25", num: 1500.25}, want: 1500.25},
		{name: "shared string", cell: fakeXLSCell{typ: "*record.LabelSSt", str: "Ventas"}, want: "Ventas"},
		{name: "blank", cell: fakeXLSCell{typ: "*record.Blank"}, want: nil},
		{name: "empty label", cell: fakeXLSCell{typ: "*record.LabelSSt"}, want: nil},
		{name: "nil cell", cell: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := xlsCellValue(tt.cell); got != tt.want {
				t.Errorf("xlsCellValue = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestXLSDateCellParsesAsDay(t *testing.T) {
	v := xlsCellValue(fakeXLSCell{typ: "*record.Number", str: "2025.01", num: 45672})
	got, err := locale.ParseDate(v)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("date = %s, want %s", got, want)
	}
	if _, err := locale.ParseDate("2025.01"); err == nil {
		t.Error("year.month display text must not parse as a date")
	}
}
