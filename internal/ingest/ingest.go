// Package ingest turns uploaded spreadsheets into ledger records inside one
// store transaction per upload.
package ingest

import (
	"context"
	"time"

	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/checksum"
	"ContabilidadSaas/internal/ledger"
	"ContabilidadSaas/internal/locale"
	"ContabilidadSaas/internal/logger"
	"ContabilidadSaas/internal/sheet"
	"ContabilidadSaas/internal/workbook"

	"github.com/google/uuid"
)

// Request is one upload.
type Request struct {
	Workbook           []byte
	Scope              ledger.Scope
	Filename           string
	EnforcePeriodCheck bool
	AllowPeriodUpdate  bool
}

// Result summarizes a committed upload.
type Result struct {
	RecordsInserted   int    `json:"records_inserted"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	RowsReplaced      int    `json:"rows_replaced"`
	BatchID           string `json:"batch_id"`
	StoredBlobRef     string `json:"stored_blob_ref"`
	Period            string `json:"period"`
	PeriodLabel       string `json:"period_label"`
	SheetsIngested    int    `json:"sheets_ingested"`
}

type Ingestor struct {
	store  Store
	blobs  blob.Store
	now    func() time.Time
	decode func(filename string, data []byte) ([]workbook.Sheet, error)
}

type Option func(*Ingestor)

// WithClock overrides the processing time source.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

func New(store Store, blobs blob.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:  store,
		blobs:  blobs,
		now:    time.Now,
		decode: workbook.Decode,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// table is an eligible sheet ready for the two row passes.
type table struct {
	*sheet.Table
	mapping sheet.Mapping
}

// Ingest stores the original file, then parses and merges its rows into the
// scope's ledger. On any error nothing is persisted and the stored file is
// removed.
func (i *Ingestor) Ingest(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx).With().
		Str("owner_id", req.Scope.OwnerID).
		Str("company_id", req.Scope.CompanyID).
		Str("vault_id", req.Scope.VaultID).
		Str("filename", req.Filename).
		Logger()

	now := i.now().UTC()
	ref, err := i.blobs.Put(ctx, blob.NewName(req.Filename, now), req.Workbook)
	if err != nil {
		return nil, storeErr("put blob", err)
	}

	tx, err := i.store.Begin(ctx, req.Scope)
	if err != nil {
		i.removeBlob(ctx, ref)
		return nil, storeErr("begin", err)
	}
	fail := func(err error) (*Result, error) {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("[INGEST] rollback failed")
		}
		i.removeBlob(ctx, ref)
		log.Warn().Err(err).Str("stored_ref", ref).Msg("[INGEST] upload rejected")
		return nil, err
	}

	batch := &ledger.Batch{
		ID:         uuid.NewString(),
		Scope:      req.Scope,
		Filename:   req.Filename,
		StoredRef:  ref,
		FileHash:   checksum.Sum(req.Workbook),
		UploadedAt: now,
		Status:     ledger.BatchPending,
	}
	if err := tx.CreateBatch(ctx, batch); err != nil {
		return fail(storeErr("create batch", err))
	}

	tables, err := i.eligibleTables(req)
	if err != nil {
		return fail(err)
	}

	acc := newAccumulator()
	for _, t := range tables {
		if err := i.ingestTable(ctx, tx, req, batch, t, acc, now); err != nil {
			return fail(err)
		}
	}

	totals := acc.totals(now)
	if err := tx.InsertRecords(ctx, batch.ID, acc.records); err != nil {
		return fail(storeErr("insert records", err))
	}
	if err := tx.FinalizeBatch(ctx, batch.ID, totals); err != nil {
		return fail(storeErr("finalize batch", err))
	}
	if err := tx.Commit(ctx); err != nil {
		i.removeBlob(ctx, ref)
		return nil, storeErr("commit", err)
	}

	log.Info().
		Str("batch_id", batch.ID).
		Str("period", totals.PeriodLabel).
		Int("inserted", totals.RecordsInserted).
		Int("duplicates", totals.DuplicatesSkipped).
		Int("replaced", totals.RowsReplaced).
		Int("sheets", acc.sheets).
		Msg("[INGEST] upload committed")

	return &Result{
		RecordsInserted:   totals.RecordsInserted,
		DuplicatesSkipped: totals.DuplicatesSkipped,
		RowsReplaced:      totals.RowsReplaced,
		BatchID:           batch.ID,
		StoredBlobRef:     ref,
		Period:            totals.Period,
		PeriodLabel:       totals.PeriodLabel,
		SheetsIngested:    acc.sheets,
	}, nil
}

func (i *Ingestor) eligibleTables(req Request) ([]table, error) {
	sheets, err := i.decode(req.Filename, req.Workbook)
	if err != nil {
		return nil, &NoValidHeaderError{Filename: req.Filename, Err: err}
	}
	var out []table
	for _, s := range sheets {
		t, ok := sheet.ExtractTable(s.Name, s.Rows)
		if !ok {
			continue
		}
		m := sheet.Resolve(t.Headers)
		if !m.Eligible() {
			continue
		}
		out = append(out, table{Table: t, mapping: m})
	}
	if len(out) == 0 {
		return nil, &NoValidHeaderError{Filename: req.Filename}
	}
	return out, nil
}

func (i *Ingestor) ingestTable(ctx context.Context, tx Tx, req Request, batch *ledger.Batch, t table, acc *accumulator, now time.Time) error {
	if period, mv, ok := detectPeriod(t); ok {
		acc.notePeriod(period)
		if err := i.checkPeriod(ctx, tx, req, period, mv.date, acc); err != nil {
			return err
		}
	}

	stored, err := tx.ListFingerprintFields(ctx)
	if err != nil {
		return storeErr("list fingerprints", err)
	}
	seen := make(map[ledger.Fingerprint]struct{}, len(stored)+len(acc.accepted))
	for _, f := range stored {
		seen[f.Fingerprint()] = struct{}{}
	}
	for fp := range acc.accepted {
		seen[fp] = struct{}{}
	}

	for _, row := range t.Rows {
		rec, ok := buildRecord(t.mapping, row, req, now)
		if !ok {
			continue
		}
		fp := rec.Fingerprint()
		if _, dup := seen[fp]; dup {
			acc.duplicates++
			continue
		}
		seen[fp] = struct{}{}
		rec.BatchID = batch.ID
		acc.accept(rec, fp)
	}
	acc.sheets++
	return nil
}

// detectPeriod returns the period of the first row whose movement parses.
func detectPeriod(t table) (string, movement, bool) {
	for _, row := range t.Rows {
		mv, ok := parseMovement(t.mapping, row)
		if !ok {
			continue
		}
		return monthOf(t.mapping, row, mv.date), mv, true
	}
	return "", movement{}, false
}

// checkPeriod applies the conflict and replace policy for one detected
// period. The replaced window is the calendar month of the detecting row's
// date, cleared at most once per upload.
func (i *Ingestor) checkPeriod(ctx context.Context, tx Tx, req Request, period string, date time.Time, acc *accumulator) error {
	existing, err := tx.FindPeriodBatch(ctx, period)
	if err != nil {
		return storeErr("find period batch", err)
	}
	if existing != nil {
		if same, _ := checksum.NewMatcher(existing.FileHash).Match(req.Workbook); same {
			logger.FromContext(ctx).Info().
				Str("period", period).
				Str("previous_batch", existing.ID).
				Msg("[INGEST] file identical to a previous upload")
		}
	}
	if existing != nil && req.EnforcePeriodCheck && !req.AllowPeriodUpdate {
		return &PeriodConflictError{Period: period}
	}
	if !req.AllowPeriodUpdate {
		return nil
	}

	start, next := locale.MonthWindow(date)
	if acc.windowDone(start) {
		return nil
	}
	deleted, err := tx.DeleteRecordsInRange(ctx, start, next)
	if err != nil {
		return storeErr("delete period records", err)
	}
	acc.rowsReplaced += deleted
	if existing != nil || deleted > 0 {
		acc.replaced = true
	}
	return nil
}

func (i *Ingestor) removeBlob(ctx context.Context, ref string) {
	// the request context may already be cancelled
	cleanupCtx := context.WithoutCancel(ctx)
	if err := i.blobs.Delete(cleanupCtx, ref); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("stored_ref", ref).Msg("[INGEST] could not remove stored file")
	}
}
