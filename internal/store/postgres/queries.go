package postgres

import (
	"context"
	"fmt"
	"strings"

	"ContabilidadSaas/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const recordColumns = `id, COALESCE(batch_id, ''), record_date, month, account, category, subcategory, project,
	project_code, counterparty, description, document_type, document_number, flow_type, verified,
	comments, amount::text, balance::text, source_filename, created_at`

// filterClause renders f as extra AND conditions after the scope ones.
func filterClause(f ledger.Filter, args []any) (string, []any) {
	var sb strings.Builder
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}
	if f.Category != "" {
		add("lower(category) = lower($%d)", f.Category)
	}
	if f.Flow != "" {
		add("flow_type = $%d", string(f.Flow))
	}
	if f.DateFrom != nil {
		add("record_date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("record_date <= $%d", *f.DateTo)
	}
	if f.Search != "" {
		// strpos keeps % and _ literal, as in ledger.Filter.Match
		add("strpos(lower(description), lower($%d)) > 0", f.Search)
	}
	return sb.String(), args
}

func scanRecord(rows pgx.Rows, scope ledger.Scope) (ledger.Record, error) {
	r := ledger.Record{Scope: scope}
	var flow, amount string
	var balance *string
	err := rows.Scan(&r.ID, &r.BatchID, &r.Date, &r.Month, &r.Account, &r.Category, &r.Subcategory,
		&r.Project, &r.ProjectCode, &r.Counterparty, &r.Description, &r.DocumentType, &r.DocumentNumber,
		&flow, &r.Verified, &r.Comments, &amount, &balance, &r.SourceFilename, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.Flow = ledger.Flow(flow)
	if r.Amount, err = decimal.NewFromString(amount); err != nil {
		return r, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	if balance != nil {
		b, err := decimal.NewFromString(*balance)
		if err != nil {
			return r, fmt.Errorf("stored balance %q: %w", *balance, err)
		}
		r.Balance = &b
	}
	return r, nil
}

// ListRecords returns one page of records matching f, newest date first,
// and the total number of matches.
func (s *Store) ListRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter, offset, limit int) ([]ledger.Record, int, error) {
	where, args := filterClause(f, scopeArgs(scope))

	var total int
	countQ := `SELECT COUNT(*) FROM accounting_records WHERE ` + scopeWhere + where
	if err := s.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	if offset < 0 {
		offset = 0
	}
	var lim any = limit
	if limit <= 0 {
		lim = nil // LIMIT NULL returns every row
	}
	args = append(args, lim, offset)
	q := fmt.Sprintf(`SELECT %s FROM accounting_records WHERE %s%s
		ORDER BY record_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		recordColumns, scopeWhere, where, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out := []ledger.Record{}
	for rows.Next() {
		r, err := scanRecord(rows, scope)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// DeleteRecords removes records matching f inside the scope lock.
func (s *Store) DeleteRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockScope(ctx, tx, scope); err != nil {
		return 0, fmt.Errorf("lock scope: %w", err)
	}
	where, args := filterClause(f, scopeArgs(scope))
	tag, err := tx.Exec(ctx, `DELETE FROM accounting_records WHERE `+scopeWhere+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListBatches returns the scope's uploads, newest first.
func (s *Store) ListBatches(ctx context.Context, scope ledger.Scope) ([]ledger.Batch, error) {
	q := `SELECT ` + batchColumns + ` FROM upload_batches WHERE ` + scopeWhere + ` ORDER BY uploaded_at DESC`
	rows, err := s.pool.Query(ctx, q, scopeArgs(scope)...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out := []ledger.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// StoredRefs returns the blob reference of every batch.
func (s *Store) StoredRefs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT stored_ref FROM upload_batches`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]struct{})
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs[ref] = struct{}{}
	}
	return refs, rows.Err()
}
