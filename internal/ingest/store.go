package ingest

import (
	"context"
	"time"

	"ContabilidadSaas/internal/ledger"
)

// Store opens scoped transactions. Implementations serialize transactions
// on the same scope; different scopes proceed independently.
type Store interface {
	Begin(ctx context.Context, scope ledger.Scope) (Tx, error)
}

// Tx is one ingestion's view of a scope. Nothing is visible to other
// transactions until Commit.
type Tx interface {
	// FindPeriodBatch returns the committed batch for period, or nil.
	FindPeriodBatch(ctx context.Context, period string) (*ledger.Batch, error)
	// DeleteRecordsInRange removes records dated in [start, end).
	DeleteRecordsInRange(ctx context.Context, start, end time.Time) (int, error)
	ListFingerprintFields(ctx context.Context) ([]ledger.FingerprintFields, error)
	InsertRecords(ctx context.Context, batchID string, records []ledger.Record) error
	CreateBatch(ctx context.Context, b *ledger.Batch) error
	FinalizeBatch(ctx context.Context, batchID string, totals ledger.BatchTotals) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
