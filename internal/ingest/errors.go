package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrNoValidHeader  = errors.New("no sheet with a recognizable header")
	ErrPeriodConflict = errors.New("period already loaded")
)

// NoValidHeaderError means no sheet of the workbook yielded a usable table.
// Err carries the decode failure when the file could not be read at all.
type NoValidHeaderError struct {
	Filename string
	Err      error
}

func (e *NoValidHeaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Filename, ErrNoValidHeader, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Filename, ErrNoValidHeader)
}

func (e *NoValidHeaderError) Is(target error) bool { return target == ErrNoValidHeader }

func (e *NoValidHeaderError) Unwrap() error { return e.Err }

// PeriodConflictError means a committed upload already covers Period and
// the caller did not allow replacing it.
type PeriodConflictError struct {
	Period string
}

func (e *PeriodConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPeriodConflict, e.Period)
}

func (e *PeriodConflictError) Is(target error) bool { return target == ErrPeriodConflict }

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
