// Package postgres is the PostgreSQL ledger store built on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ContabilidadSaas/internal/config"
	"ContabilidadSaas/internal/ingest"
	"ContabilidadSaas/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens and verifies a pgx pool.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const scopeWhere = `owner_id = $1 AND company_id = $2 AND vault_id = $3`

func scopeArgs(sc ledger.Scope) []any {
	return []any{sc.OwnerID, sc.CompanyID, sc.VaultID}
}

// lockScope serializes writers of one scope until the transaction ends.
func lockScope(ctx context.Context, tx pgx.Tx, sc ledger.Scope) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, sc.Key())
	return err
}

func (s *Store) Begin(ctx context.Context, scope ledger.Scope) (ingest.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := lockScope(ctx, tx, scope); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("lock scope: %w", err)
	}
	return &scopedTx{tx: tx, scope: scope}, nil
}

type scopedTx struct {
	tx    pgx.Tx
	scope ledger.Scope
}

const batchColumns = `id, owner_id, company_id, vault_id, filename, stored_ref, file_hash, uploaded_at,
	period, period_label, status, records_inserted, duplicates_skipped, rows_replaced`

func scanBatch(row pgx.Row) (*ledger.Batch, error) {
	var b ledger.Batch
	var status string
	err := row.Scan(&b.ID, &b.Scope.OwnerID, &b.Scope.CompanyID, &b.Scope.VaultID, &b.Filename, &b.StoredRef,
		&b.FileHash, &b.UploadedAt, &b.Period, &b.PeriodLabel, &status,
		&b.RecordsInserted, &b.DuplicatesSkipped, &b.RowsReplaced)
	if err != nil {
		return nil, err
	}
	b.Status = ledger.BatchStatus(status)
	return &b, nil
}

func (t *scopedTx) FindPeriodBatch(ctx context.Context, period string) (*ledger.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM upload_batches
		WHERE ` + scopeWhere + ` AND period = $4 AND status = $5
		ORDER BY uploaded_at DESC LIMIT 1`
	args := append(scopeArgs(t.scope), period, string(ledger.BatchCommitted))
	b, err := scanBatch(t.tx.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query period batch: %w", err)
	}
	return b, nil
}

func (t *scopedTx) DeleteRecordsInRange(ctx context.Context, start, end time.Time) (int, error) {
	q := `DELETE FROM accounting_records WHERE ` + scopeWhere + ` AND record_date >= $4 AND record_date < $5`
	tag, err := t.tx.Exec(ctx, q, append(scopeArgs(t.scope), start, end)...)
	if err != nil {
		return 0, fmt.Errorf("delete period records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (t *scopedTx) ListFingerprintFields(ctx context.Context) ([]ledger.FingerprintFields, error) {
	q := `SELECT record_date, account, category, subcategory, project, project_code, description,
			flow_type, amount::text, document_number
		FROM accounting_records WHERE ` + scopeWhere
	rows, err := t.tx.Query(ctx, q, scopeArgs(t.scope)...)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	var out []ledger.FingerprintFields
	for rows.Next() {
		f := ledger.FingerprintFields{OwnerID: t.scope.OwnerID}
		var flow, amount string
		if err := rows.Scan(&f.Date, &f.Account, &f.Category, &f.Subcategory, &f.Project, &f.ProjectCode,
			&f.Description, &flow, &amount, &f.DocumentNumber); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		f.Flow = ledger.Flow(flow)
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const insertRecord = `INSERT INTO accounting_records
	(owner_id, company_id, vault_id, batch_id, record_date, month, account, category, subcategory,
	 project, project_code, counterparty, description, document_type, document_number, flow_type,
	 verified, comments, amount, balance, source_filename, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
	 $19::numeric, $20::numeric, $21, $22)`

func (t *scopedTx) InsertRecords(ctx context.Context, batchID string, records []ledger.Record) error {
	for start := 0; start < len(records); start += config.InsertBatchSize {
		end := start + config.InsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := t.insertChunk(ctx, batchID, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (t *scopedTx) insertChunk(ctx context.Context, batchID string, records []ledger.Record) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		var balance *string
		if r.Balance != nil {
			s := r.Balance.String()
			balance = &s
		}
		batch.Queue(insertRecord,
			t.scope.OwnerID, t.scope.CompanyID, t.scope.VaultID, batchID, r.Date, r.Month,
			r.Account, r.Category, r.Subcategory, r.Project, r.ProjectCode, r.Counterparty,
			r.Description, r.DocumentType, r.DocumentNumber, string(r.Flow), r.Verified, r.Comments,
			r.Amount.String(), balance, r.SourceFilename, r.CreatedAt)
	}

	br := t.tx.SendBatch(ctx, batch)
	defer br.Close()
	var failures []string
	for i := range records {
		if _, err := br.Exec(); err != nil {
			failures = append(failures, fmt.Sprintf("record %d: %v", i+1, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to insert %d of %d records: %s", len(failures), len(records), strings.Join(failures, "; "))
	}
	return nil
}

func (t *scopedTx) CreateBatch(ctx context.Context, b *ledger.Batch) error {
	q := `INSERT INTO upload_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := t.tx.Exec(ctx, q, b.ID, t.scope.OwnerID, t.scope.CompanyID, t.scope.VaultID, b.Filename, b.StoredRef,
		b.FileHash, b.UploadedAt, b.Period, b.PeriodLabel, string(b.Status),
		b.RecordsInserted, b.DuplicatesSkipped, b.RowsReplaced)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (t *scopedTx) FinalizeBatch(ctx context.Context, batchID string, totals ledger.BatchTotals) error {
	q := `UPDATE upload_batches
		SET period = $2, period_label = $3, records_inserted = $4, duplicates_skipped = $5,
			rows_replaced = $6, status = $7
		WHERE id = $1`
	tag, err := t.tx.Exec(ctx, q, batchID, totals.Period, totals.PeriodLabel, totals.RecordsInserted,
		totals.DuplicatesSkipped, totals.RowsReplaced, string(ledger.BatchCommitted))
	if err != nil {
		return fmt.Errorf("finalize batch: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("finalize batch: unknown batch %s", batchID)
	}
	return nil
}

func (t *scopedTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// Rollback is safe to call after Commit.
func (t *scopedTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
