package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleRecord() Record {
	return Record{
		Scope:          Scope{OwnerID: "u1", CompanyID: "c1", VaultID: "v1"},
		Date:           time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Account:        "Banco Estado",
		Category:       "Ventas",
		Subcategory:    "General",
		Project:        "Sin proyecto",
		Description:    "Factura 12",
		Flow:           FlowIncome,
		Amount:         decimal.RequireFromString("1234.5"),
		DocumentNumber: "F-12",
	}
}

func TestFingerprintIgnoresCase(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.Category = "VENTAS"
	b.Description = "factura 12"
	b.Account = "banco estado"
	b.DocumentNumber = "f-12"

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints should match regardless of case")
	}
}

func TestFingerprintRoundsAmount(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.Amount = decimal.RequireFromString("1234.500")

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal amounts with different scale should match")
	}
}

func TestFingerprintDistinguishes(t *testing.T) {
	base := sampleRecord()
	tests := map[string]func(*Record){
		"owner":    func(r *Record) { r.Scope.OwnerID = "u2" },
		"date":     func(r *Record) { r.Date = r.Date.AddDate(0, 0, 1) },
		"amount":   func(r *Record) { r.Amount = decimal.RequireFromString("1234.51") },
		"flow":     func(r *Record) { r.Flow = FlowExpense },
		"document": func(r *Record) { r.DocumentNumber = "F-13" },
		"project":  func(r *Record) { r.ProjectCode = "P1" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := sampleRecord()
			mutate(&r)
			if r.Fingerprint() == base.Fingerprint() {
				t.Errorf("changing %s should change the fingerprint", name)
			}
		})
	}
}

func TestFingerprintIgnoresNonIdentityFields(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.Comments = "revisado"
	b.Verified = "si"
	b.BatchID = "other"
	b.Scope.VaultID = "v9"

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("comments, verification, batch and vault are not part of identity")
	}
}

func TestFlowFromToken(t *testing.T) {
	for tok, want := range map[string]Flow{"ingreso": FlowIncome, "credito": FlowIncome, "egreso": FlowExpense, "pago": FlowExpense} {
		if got, ok := FlowFromToken(tok); !ok || got != want {
			t.Errorf("FlowFromToken(%q) = %q, %v", tok, got, ok)
		}
	}
	if _, ok := FlowFromToken("transferencia"); ok {
		t.Error("unknown token should not map")
	}
}

func TestBatchFinalize(t *testing.T) {
	b := &Batch{Status: BatchPending, Period: "2025-01"}
	b.Finalize(BatchTotals{Period: "2025-01", PeriodLabel: "2025-01" + UpdatedSuffix, RecordsInserted: 3, RowsReplaced: 2})
	if b.Status != BatchCommitted || b.RecordsInserted != 3 || b.RowsReplaced != 2 {
		t.Errorf("unexpected batch %+v", b)
	}
	if b.PeriodLabel != "2025-01 (actualizado)" {
		t.Errorf("label = %q", b.PeriodLabel)
	}
}
