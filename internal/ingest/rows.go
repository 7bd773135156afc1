package ingest

import (
	"strings"
	"time"

	"ContabilidadSaas/internal/ledger"
	"ContabilidadSaas/internal/locale"
	"ContabilidadSaas/internal/sheet"

	"github.com/shopspring/decimal"
)

// movement is the part of a row every record needs: direction, amount and
// date. Period detection looks only at these.
type movement struct {
	flow   ledger.Flow
	amount decimal.Decimal
	date   time.Time
}

func parseFlow(v any) (ledger.Flow, bool) {
	tok := sheet.NormalizeName(locale.CellString(v))
	if f, ok := ledger.FlowFromToken(tok); ok {
		return f, true
	}
	// "Ingreso por ventas", "Egreso - proveedores"
	if head, _, found := strings.Cut(tok, "_"); found {
		return ledger.FlowFromToken(head)
	}
	return "", false
}

func parseMovement(m sheet.Mapping, row []any) (movement, bool) {
	flow, ok := parseFlow(m.Value(row, sheet.FieldFlow))
	if !ok {
		return movement{}, false
	}
	amount, err := amountFor(m, row, flow)
	if err != nil {
		return movement{}, false
	}
	date, err := locale.ParseDate(m.Value(row, sheet.FieldDate))
	if err != nil {
		return movement{}, false
	}
	return movement{flow: flow, amount: amount, date: date}, true
}

// amountFor reads the single amount column, or with split columns the one
// matching the movement direction.
func amountFor(m sheet.Mapping, row []any, flow ledger.Flow) (decimal.Decimal, error) {
	if m.Has(sheet.FieldAmount) {
		return locale.ParseAmount(m.Value(row, sheet.FieldAmount))
	}
	col := sheet.FieldNetIncome
	if flow == ledger.FlowExpense {
		col = sheet.FieldNetExpense
	}
	return locale.ParseAmount(m.Value(row, col))
}

// monthOf prefers a valid month column over the date's own month.
func monthOf(m sheet.Mapping, row []any, date time.Time) string {
	if v := m.Value(row, sheet.FieldMonth); !locale.IsBlank(v) {
		if t, err := locale.ParseMonth(v); err == nil {
			return t.Format(locale.MonthLayout)
		}
	}
	return date.Format(locale.MonthLayout)
}

// buildRecord converts one table row. ok is false for rows that must be
// skipped: unknown movement type, unparseable date or amount, no category
// or a balance that is present but not a number.
func buildRecord(m sheet.Mapping, row []any, req Request, now time.Time) (ledger.Record, bool) {
	mv, ok := parseMovement(m, row)
	if !ok {
		return ledger.Record{}, false
	}
	category := m.Text(row, sheet.FieldCategory)
	if category == "" {
		return ledger.Record{}, false
	}

	var balance *decimal.Decimal
	if v := m.Value(row, sheet.FieldBalance); !locale.IsBlank(v) {
		b, err := locale.ParseAmount(v)
		if err != nil {
			return ledger.Record{}, false
		}
		balance = &b
	}

	subcategory := m.Text(row, sheet.FieldSubcategory)
	description := m.Text(row, sheet.FieldDescription)
	if description == "" {
		description = category + " - " + subcategory
	}

	return ledger.Record{
		Scope:          req.Scope,
		Date:           mv.date,
		Month:          monthOf(m, row, mv.date),
		Account:        m.Text(row, sheet.FieldAccount),
		Category:       category,
		Subcategory:    subcategory,
		Project:        m.Text(row, sheet.FieldProject),
		ProjectCode:    m.Text(row, sheet.FieldProjectCode),
		Counterparty:   m.Text(row, sheet.FieldCounterparty),
		Description:    description,
		DocumentType:   m.Text(row, sheet.FieldDocumentType),
		DocumentNumber: m.Text(row, sheet.FieldDocumentNumber),
		Flow:           mv.flow,
		Verified:       m.Text(row, sheet.FieldVerified),
		Comments:       m.Text(row, sheet.FieldComments),
		Amount:         mv.amount,
		Balance:        balance,
		SourceFilename: req.Filename,
		CreatedAt:      now,
	}, true
}
