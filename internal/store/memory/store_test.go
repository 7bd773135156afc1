package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ContabilidadSaas/internal/ledger"

	"github.com/shopspring/decimal"
)

var (
	scopeA = ledger.Scope{OwnerID: "u1", CompanyID: "c1", VaultID: "v1"}
	scopeB = ledger.Scope{OwnerID: "u2", CompanyID: "c1", VaultID: "v1"}
)

func rec(day int, desc string) ledger.Record {
	return ledger.Record{
		Date:        time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		Category:    "Ventas",
		Description: desc,
		Flow:        ledger.FlowIncome,
		Amount:      decimal.NewFromInt(int64(day * 100)),
	}
}

func commitBatch(t *testing.T, s *Store, scope ledger.Scope, id, period string, records ...ledger.Record) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx, scope)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)
	if err := tx.CreateBatch(ctx, &ledger.Batch{ID: id, Scope: scope, StoredRef: id + ".xlsx", Status: ledger.BatchPending, UploadedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := tx.InsertRecords(ctx, id, records); err != nil {
		t.Fatal(err)
	}
	if err := tx.FinalizeBatch(ctx, id, ledger.BatchTotals{Period: period, PeriodLabel: period, RecordsInserted: len(records)}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestCommitAndRollback(t *testing.T) {
	s := New()
	ctx := context.Background()
	commitBatch(t, s, scopeA, "b1", "2025-01", rec(1, "a"), rec(2, "b"))

	tx, err := s.Begin(ctx, scopeA)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.InsertRecords(ctx, "b2", []ledger.Record{rec(3, "c")}); err != nil {
		t.Fatal(err)
	}
	if n, err := tx.DeleteRecordsInRange(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil || n != 2 {
		t.Fatalf("DeleteRecordsInRange = %d, %v", n, err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	got, total, err := s.ListRecords(ctx, scopeA, ledger.Filter{}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("after rollback got %d records (total %d), want 2", len(got), total)
	}
	if got[0].Description != "b" || got[0].ID == 0 || got[0].BatchID != "b1" {
		t.Errorf("unexpected first record %+v", got[0])
	}
}

func TestFindPeriodBatchIgnoresPending(t *testing.T) {
	s := New()
	ctx := context.Background()
	commitBatch(t, s, scopeA, "b1", "2025-01")

	tx, err := s.Begin(ctx, scopeA)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback(ctx)
	if err := tx.CreateBatch(ctx, &ledger.Batch{ID: "b2", Period: "2025-02", Status: ledger.BatchPending}); err != nil {
		t.Fatal(err)
	}
	if b, err := tx.FindPeriodBatch(ctx, "2025-01"); err != nil || b == nil || b.ID != "b1" {
		t.Errorf("FindPeriodBatch(2025-01) = %+v, %v", b, err)
	}
	if b, _ := tx.FindPeriodBatch(ctx, "2025-02"); b != nil {
		t.Errorf("pending batch must not count, got %+v", b)
	}
}

func TestSameScopeIsSerialized(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx, err := s.Begin(ctx, scopeA)
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := s.Begin(waitCtx, scopeA); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Begin on the same scope = %v, want deadline exceeded", err)
	}

	other, err := s.Begin(waitCtx, scopeB)
	if err != nil {
		t.Fatalf("Begin on another scope blocked: %v", err)
	}
	other.Rollback(ctx)

	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	again, err := s.Begin(ctx, scopeA)
	if err != nil {
		t.Fatalf("Begin after commit: %v", err)
	}
	again.Rollback(ctx)
}

func TestClosedTx(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx, _ := s.Begin(ctx, scopeA)
	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback after Commit = %v", err)
	}
	if err := tx.InsertRecords(ctx, "b", nil); !errors.Is(err, ErrTxClosed) {
		t.Errorf("InsertRecords after Commit = %v", err)
	}
}

func TestListRecordsPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	commitBatch(t, s, scopeA, "b1", "2025-01", rec(5, "e"), rec(1, "a"), rec(3, "c"), rec(4, "d"), rec(2, "b"))

	page, total, err := s.ListRecords(ctx, scopeA, ledger.Filter{}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(page) != 2 || page[0].Description != "c" || page[1].Description != "b" {
		t.Errorf("page = %+v total = %d", page, total)
	}
	if page, _, _ := s.ListRecords(ctx, scopeA, ledger.Filter{}, 10, 2); len(page) != 0 {
		t.Errorf("offset past end returned %d records", len(page))
	}
	if page, _, err := s.ListRecords(ctx, scopeA, ledger.Filter{}, -200, 2); err != nil || len(page) != 2 || page[0].Description != "e" {
		t.Errorf("negative offset = %+v, %v", page, err)
	}
	if _, total, _ := s.ListRecords(ctx, scopeB, ledger.Filter{}, 0, 10); total != 0 {
		t.Errorf("other scope sees %d records", total)
	}
}

func TestDeleteRecordsAndRefs(t *testing.T) {
	s := New()
	ctx := context.Background()
	commitBatch(t, s, scopeA, "b1", "2025-01", rec(1, "keep"), rec(2, "drop me"))
	commitBatch(t, s, scopeB, "b2", "2025-01", rec(2, "drop me"))

	n, err := s.DeleteRecords(ctx, scopeA, ledger.Filter{Search: "drop"})
	if err != nil || n != 1 {
		t.Fatalf("DeleteRecords = %d, %v", n, err)
	}
	if _, total, _ := s.ListRecords(ctx, scopeB, ledger.Filter{}, 0, 10); total != 1 {
		t.Error("delete leaked into another scope")
	}

	refs, err := s.StoredRefs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := refs["b1.xlsx"]; !ok || len(refs) != 2 {
		t.Errorf("StoredRefs = %v", refs)
	}
	batches, _ := s.ListBatches(ctx, scopeA)
	if len(batches) != 1 || batches[0].Status != ledger.BatchCommitted {
		t.Errorf("ListBatches = %+v", batches)
	}
}
