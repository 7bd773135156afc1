// Package memory is an in-process ledger store used when no database is
// configured and by tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ContabilidadSaas/internal/ingest"
	"ContabilidadSaas/internal/ledger"
)

var ErrTxClosed = errors.New("transaction already closed")

type scopeData struct {
	records []ledger.Record
	batches []ledger.Batch
}

func (d *scopeData) clone() *scopeData {
	if d == nil {
		return &scopeData{}
	}
	return &scopeData{
		records: append([]ledger.Record(nil), d.records...),
		batches: append([]ledger.Batch(nil), d.batches...),
	}
}

// Store keeps committed data per scope. A transaction works on a private
// copy of its scope and swaps it in on commit; a per-scope lock is held for
// the lifetime of the transaction.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]*scopeData
	locks  map[string]chan struct{}
	nextID int64
}

func New() *Store {
	return &Store{
		scopes: make(map[string]*scopeData),
		locks:  make(map[string]chan struct{}),
	}
}

func (s *Store) scopeLock(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *Store) acquire(ctx context.Context, key string) (func(), error) {
	ch := s.scopeLock(key)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) snapshot(key string) *scopeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[key].clone()
}

func (s *Store) Begin(ctx context.Context, scope ledger.Scope) (ingest.Tx, error) {
	key := scope.Key()
	release, err := s.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return &tx{store: s, scope: scope, key: key, data: s.snapshot(key), release: release}, nil
}

type tx struct {
	store   *Store
	scope   ledger.Scope
	key     string
	data    *scopeData
	release func()
	done    bool
}

func (t *tx) FindPeriodBatch(ctx context.Context, period string) (*ledger.Batch, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	for i := len(t.data.batches) - 1; i >= 0; i-- {
		b := t.data.batches[i]
		if b.Status == ledger.BatchCommitted && b.Period == period {
			return &b, nil
		}
	}
	return nil, nil
}

func (t *tx) DeleteRecordsInRange(ctx context.Context, start, end time.Time) (int, error) {
	if t.done {
		return 0, ErrTxClosed
	}
	kept := t.data.records[:0:0]
	deleted := 0
	for _, r := range t.data.records {
		if !r.Date.Before(start) && r.Date.Before(end) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	t.data.records = kept
	return deleted, nil
}

func (t *tx) ListFingerprintFields(ctx context.Context) ([]ledger.FingerprintFields, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	out := make([]ledger.FingerprintFields, 0, len(t.data.records))
	for _, r := range t.data.records {
		out = append(out, r.FingerprintFields())
	}
	return out, nil
}

func (t *tx) InsertRecords(ctx context.Context, batchID string, records []ledger.Record) error {
	if t.done {
		return ErrTxClosed
	}
	for _, r := range records {
		r.BatchID = batchID
		r.Scope = t.scope
		r.ID = 0
		t.data.records = append(t.data.records, r)
	}
	return nil
}

func (t *tx) CreateBatch(ctx context.Context, b *ledger.Batch) error {
	if t.done {
		return ErrTxClosed
	}
	for _, existing := range t.data.batches {
		if existing.ID == b.ID {
			return errors.New("duplicate batch id " + b.ID)
		}
	}
	t.data.batches = append(t.data.batches, *b)
	return nil
}

func (t *tx) FinalizeBatch(ctx context.Context, batchID string, totals ledger.BatchTotals) error {
	if t.done {
		return ErrTxClosed
	}
	for i := range t.data.batches {
		if t.data.batches[i].ID == batchID {
			t.data.batches[i].Finalize(totals)
			return nil
		}
	}
	return errors.New("unknown batch " + batchID)
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true
	defer t.release()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := range t.data.records {
		if t.data.records[i].ID == 0 {
			t.store.nextID++
			t.data.records[i].ID = t.store.nextID
		}
	}
	t.store.scopes[t.key] = t.data
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

// ListRecords returns one page of committed records matching f, newest
// date first, and the total number of matches.
func (s *Store) ListRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter, offset, limit int) ([]ledger.Record, int, error) {
	s.mu.RLock()
	data := s.scopes[scope.Key()]
	var matched []ledger.Record
	if data != nil {
		for _, r := range data.records {
			if f.Match(r) {
				matched = append(matched, r)
			}
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})
	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []ledger.Record{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// DeleteRecords removes committed records matching f and returns how many
// were deleted. It waits for any ingestion running on the scope.
func (s *Store) DeleteRecords(ctx context.Context, scope ledger.Scope, f ledger.Filter) (int, error) {
	key := scope.Key()
	release, err := s.acquire(ctx, key)
	if err != nil {
		return 0, err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.scopes[key].clone()
	kept := data.records[:0:0]
	deleted := 0
	for _, r := range data.records {
		if f.Match(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	data.records = kept
	s.scopes[key] = data
	return deleted, nil
}

// ListBatches returns the scope's committed uploads, newest first.
func (s *Store) ListBatches(ctx context.Context, scope ledger.Scope) ([]ledger.Batch, error) {
	s.mu.RLock()
	data := s.scopes[scope.Key()]
	var out []ledger.Batch
	if data != nil {
		out = append(out, data.batches...)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

// StoredRefs returns the blob reference of every committed batch.
func (s *Store) StoredRefs(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[string]struct{})
	for _, data := range s.scopes {
		for _, b := range data.batches {
			if b.StoredRef != "" {
				refs[b.StoredRef] = struct{}{}
			}
		}
	}
	return refs, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }
