package ingest

import (
	"time"

	"ContabilidadSaas/internal/ledger"
	"ContabilidadSaas/internal/locale"
)

// accumulator is folded over the eligible sheets of one upload.
type accumulator struct {
	period       string
	replaced     bool
	rowsReplaced int
	duplicates   int
	sheets       int
	records      []ledger.Record
	accepted     map[ledger.Fingerprint]struct{}
	windows      map[time.Time]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		accepted: make(map[ledger.Fingerprint]struct{}),
		windows:  make(map[time.Time]struct{}),
	}
}

// notePeriod keeps the first detected period as the batch period.
func (a *accumulator) notePeriod(p string) {
	if a.period == "" {
		a.period = p
	}
}

// windowDone reports whether the month starting at start was already
// cleared, marking it cleared otherwise.
func (a *accumulator) windowDone(start time.Time) bool {
	if _, ok := a.windows[start]; ok {
		return true
	}
	a.windows[start] = struct{}{}
	return false
}

func (a *accumulator) accept(r ledger.Record, fp ledger.Fingerprint) {
	a.records = append(a.records, r)
	a.accepted[fp] = struct{}{}
}

func (a *accumulator) totals(now time.Time) ledger.BatchTotals {
	period := a.period
	if period == "" {
		period = now.Format(locale.MonthLayout)
	}
	label := period
	if a.replaced {
		label += ledger.UpdatedSuffix
	}
	return ledger.BatchTotals{
		Period:            period,
		PeriodLabel:       label,
		RecordsInserted:   len(a.records),
		DuplicatesSkipped: a.duplicates,
		RowsReplaced:      a.rowsReplaced,
	}
}
