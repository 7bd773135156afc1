// Package ledger holds the canonical accounting record model shared by the
// ingestion pipeline, the stores and the HTTP layer.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Scope is the tenant partition every record and batch belongs to.
type Scope struct {
	OwnerID   string `json:"user_id"`
	CompanyID string `json:"company_id"`
	VaultID   string `json:"vault_id"`
}

// Key is a stable string form of the scope used for locks and map keys.
func (s Scope) Key() string {
	return s.OwnerID + "\x1f" + s.CompanyID + "\x1f" + s.VaultID
}

// Flow is the direction of a movement.
type Flow string

const (
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
)

var flowTokens = map[string]Flow{
	"ingreso": FlowIncome, "ingresos": FlowIncome, "entrada": FlowIncome, "income": FlowIncome,
	"abono": FlowIncome, "credito": FlowIncome,
	"egreso": FlowExpense, "egresos": FlowExpense, "salida": FlowExpense, "gasto": FlowExpense,
	"expense": FlowExpense, "cargo": FlowExpense, "debito": FlowExpense, "pago": FlowExpense,
}

// FlowFromToken maps a normalized movement-type token ("ingreso", "egreso",
// "credito", ...) to a Flow.
func FlowFromToken(tok string) (Flow, bool) {
	f, ok := flowTokens[tok]
	return f, ok
}

// Record is one accepted ledger line.
type Record struct {
	ID             int64            `json:"id"`
	Scope          Scope            `json:"-"`
	BatchID        string           `json:"batch_id"`
	Date           time.Time        `json:"-"`
	Month          string           `json:"mes"`
	Account        string           `json:"cuenta"`
	Category       string           `json:"categoria"`
	Subcategory    string           `json:"subcategoria"`
	Project        string           `json:"proyecto"`
	ProjectCode    string           `json:"codigo_proyecto"`
	Counterparty   string           `json:"emisor_receptor"`
	Description    string           `json:"descripcion"`
	DocumentType   string           `json:"tipo_documento"`
	DocumentNumber string           `json:"numero_documento"`
	Flow           Flow             `json:"tipo"`
	Verified       string           `json:"verificado"`
	Comments       string           `json:"comentarios"`
	Amount         decimal.Decimal  `json:"-"`
	Balance        *decimal.Decimal `json:"-"`
	SourceFilename string           `json:"archivo"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Filter selects records inside one scope. Zero fields do not filter.
type Filter struct {
	Category string
	Flow     Flow
	DateFrom *time.Time
	DateTo   *time.Time // inclusive
	Search   string     // case-insensitive substring of Description
}

// Empty reports whether no criterion is set.
func (f Filter) Empty() bool {
	return f.Category == "" && f.Flow == "" && f.DateFrom == nil && f.DateTo == nil && f.Search == ""
}

// Match reports whether r satisfies every criterion of f.
func (f Filter) Match(r Record) bool {
	if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
		return false
	}
	if f.Flow != "" && r.Flow != f.Flow {
		return false
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
