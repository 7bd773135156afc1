package ledger

import "time"

type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchCommitted BatchStatus = "committed"
)

// UpdatedSuffix marks the label of a batch that replaced an earlier upload
// of the same period.
const UpdatedSuffix = " (actualizado)"

// Batch records one upload and its outcome.
type Batch struct {
	ID                string      `json:"id"`
	Scope             Scope       `json:"-"`
	Filename          string      `json:"filename"`
	StoredRef         string      `json:"stored_ref"`
	FileHash          string      `json:"file_hash"`
	UploadedAt        time.Time   `json:"uploaded_at"`
	Period            string      `json:"period"`
	PeriodLabel       string      `json:"period_label"`
	Status            BatchStatus `json:"status"`
	RecordsInserted   int         `json:"records_inserted"`
	DuplicatesSkipped int         `json:"duplicates_skipped"`
	RowsReplaced      int         `json:"rows_replaced"`
}

// BatchTotals are the values written once ingestion finishes.
type BatchTotals struct {
	Period            string
	PeriodLabel       string
	RecordsInserted   int
	DuplicatesSkipped int
	RowsReplaced      int
}

// Finalize copies t into b and marks it committed.
func (b *Batch) Finalize(t BatchTotals) {
	b.Period = t.Period
	b.PeriodLabel = t.PeriodLabel
	b.RecordsInserted = t.RecordsInserted
	b.DuplicatesSkipped = t.DuplicatesSkipped
	b.RowsReplaced = t.RowsReplaced
	b.Status = BatchCommitted
}
