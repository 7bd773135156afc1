package sheet

import "ContabilidadSaas/internal/locale"

// Field is a canonical ledger column.
type Field int

const (
	FieldDate Field = iota
	FieldFlow
	FieldCategory
	FieldSubcategory
	FieldAccount
	FieldProject
	FieldProjectCode
	FieldAmount
	FieldNetIncome
	FieldNetExpense
	FieldDescription
	FieldCounterparty
	FieldDocumentType
	FieldDocumentNumber
	FieldVerified
	FieldComments
	FieldBalance
	FieldMonth

	numFields
)

type fieldSpec struct {
	name     string
	aliases  []string
	fallback string
}

var fieldSpecs = [numFields]fieldSpec{
	FieldDate:           {name: "fecha", aliases: []string{"fecha", "fecha_movimiento", "fecha_de_movimiento", "fecha_transaccion", "fecha_operacion", "date"}},
	FieldFlow:           {name: "tipo", aliases: []string{"tipo", "tipo_de_movimiento", "tipo_movimiento", "movimiento", "flujo", "type"}},
	// "categoria_" never survives NormalizeName; kept to mirror the header vocabulary.
	FieldCategory:       {name: "categoria", aliases: []string{"categoria", "linea_de_negocio", "categoria_", "rubro", "category"}},
	FieldSubcategory:    {name: "subcategoria", aliases: []string{"subcategoria", "sub_categoria", "subcategory", "detalle_categoria"}, fallback: "General"},
	FieldAccount:        {name: "cuenta", aliases: []string{"cuenta", "cuenta_contable", "banco", "account"}, fallback: "General"},
	FieldProject:        {name: "proyecto", aliases: []string{"proyecto", "nombre_proyecto", "project"}, fallback: "Sin proyecto"},
	FieldProjectCode:    {name: "codigo_proyecto", aliases: []string{"codigo_proyecto", "codigo_de_proyecto", "cod_proyecto", "project_code"}},
	FieldAmount:         {name: "monto", aliases: []string{"monto", "importe", "valor", "monto_neto", "amount"}},
	FieldNetIncome:      {name: "entrada_neta", aliases: []string{"entrada_neta", "entradas", "ingreso_neto", "entrada"}},
	FieldNetExpense:     {name: "salida_neta", aliases: []string{"salida_neta", "salidas", "egreso_neto", "salida"}},
	FieldDescription:    {name: "descripcion", aliases: []string{"descripcion", "detalle", "concepto", "glosa", "description"}},
	FieldCounterparty:   {name: "emisor_receptor", aliases: []string{"emisor_receptor", "emisor_o_receptor", "contraparte", "proveedor_cliente", "tercero"}},
	FieldDocumentType:   {name: "tipo_documento", aliases: []string{"tipo_documento", "tipo_de_documento", "documento"}},
	FieldDocumentNumber: {name: "numero_documento", aliases: []string{"numero_documento", "n_documento", "numero_de_documento", "folio", "nro_documento"}},
	FieldVerified:       {name: "verificado", aliases: []string{"verificado", "verificacion", "estado", "conciliado"}},
	FieldComments:       {name: "comentarios", aliases: []string{"comentarios", "comentario", "observaciones", "notas"}},
	FieldBalance:        {name: "saldo", aliases: []string{"saldo", "saldo_acumulado", "balance"}},
	FieldMonth:          {name: "mes", aliases: []string{"mes", "periodo", "mes_contable"}},
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldSpecs[f].name
}

// Fallback is the value used when the column is missing or the cell blank.
func (f Field) Fallback() string {
	if f < 0 || f >= numFields {
		return ""
	}
	return fieldSpecs[f].fallback
}

// Mapping binds canonical fields to column positions of one table.
type Mapping struct {
	cols [numFields]int
}

// Resolve maps headers to canonical fields. For each field the aliases are
// tried in order; when several columns normalize to the same token the
// leftmost one is used.
func Resolve(headers []string) Mapping {
	first := make(map[string]int, len(headers))
	for i, h := range headers {
		tok := NormalizeName(h)
		if tok == "" {
			continue
		}
		if _, seen := first[tok]; !seen {
			first[tok] = i
		}
	}

	var m Mapping
	for f := Field(0); f < numFields; f++ {
		m.cols[f] = -1
		for _, alias := range fieldSpecs[f].aliases {
			if idx, ok := first[alias]; ok {
				m.cols[f] = idx
				break
			}
		}
	}
	return m
}

// Index returns the column bound to f.
func (m Mapping) Index(f Field) (int, bool) {
	if f < 0 || f >= numFields || m.cols[f] < 0 {
		return -1, false
	}
	return m.cols[f], true
}

func (m Mapping) Has(f Field) bool {
	_, ok := m.Index(f)
	return ok
}

// SplitAmount reports whether amounts come from separate income and expense
// columns rather than a single signed one.
func (m Mapping) SplitAmount() bool {
	return !m.Has(FieldAmount) && m.Has(FieldNetIncome) && m.Has(FieldNetExpense)
}

// Eligible reports whether the table can produce records: date, type and
// category are mapped and there is an amount source.
func (m Mapping) Eligible() bool {
	if !m.Has(FieldDate) || !m.Has(FieldFlow) || !m.Has(FieldCategory) {
		return false
	}
	return m.Has(FieldAmount) || m.SplitAmount()
}

// Value returns the raw cell for f, or nil when f is unmapped.
func (m Mapping) Value(row []any, f Field) any {
	idx, ok := m.Index(f)
	if !ok || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// Text returns the trimmed cell text for f, falling back to the field default.
func (m Mapping) Text(row []any, f Field) string {
	if s := locale.CellString(m.Value(row, f)); s != "" {
		return s
	}
	return f.Fallback()
}
