package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FingerprintFields are the record attributes that identify a movement.
// Stores return them for existing records so the ingestor can rebuild the
// seen set without loading full rows.
type FingerprintFields struct {
	OwnerID        string
	Date           time.Time
	Account        string
	Category       string
	Subcategory    string
	Project        string
	ProjectCode    string
	Description    string
	Flow           Flow
	Amount         decimal.Decimal
	DocumentNumber string
}

// Fingerprint is a comparable identity for a record. Two records with equal
// fingerprints in the same scope are duplicates.
type Fingerprint struct {
	owner          string
	date           string
	account        string
	category       string
	subcategory    string
	project        string
	projectCode    string
	description    string
	flow           string
	amount         string
	documentNumber string
}

// Fingerprint lowercases text attributes and rounds the amount to cents.
func (f FingerprintFields) Fingerprint() Fingerprint {
	return Fingerprint{
		owner:          fold(f.OwnerID),
		date:           f.Date.Format("2006-01-02"),
		account:        fold(f.Account),
		category:       fold(f.Category),
		subcategory:    fold(f.Subcategory),
		project:        fold(f.Project),
		projectCode:    fold(f.ProjectCode),
		description:    fold(f.Description),
		flow:           fold(string(f.Flow)),
		amount:         f.Amount.StringFixed(2),
		documentNumber: fold(f.DocumentNumber),
	}
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FingerprintFields extracts the identity attributes of r.
func (r Record) FingerprintFields() FingerprintFields {
	return FingerprintFields{
		OwnerID:        r.Scope.OwnerID,
		Date:           r.Date,
		Account:        r.Account,
		Category:       r.Category,
		Subcategory:    r.Subcategory,
		Project:        r.Project,
		ProjectCode:    r.ProjectCode,
		Description:    r.Description,
		Flow:           r.Flow,
		Amount:         r.Amount,
		DocumentNumber: r.DocumentNumber,
	}
}

// Fingerprint is shorthand for r.FingerprintFields().Fingerprint().
func (r Record) Fingerprint() Fingerprint {
	return r.FingerprintFields().Fingerprint()
}
