package locale

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned for nil, blank or whitespace-only cells.
var ErrEmpty = errors.New("empty value")

// ParseError reports a cell that could not be read as the requested kind.
// Callers treat it as a row-level failure.
type ParseError struct {
	Kind  string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Kind, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind string, v any, err error) *ParseError {
	return &ParseError{Kind: kind, Value: CellString(v), Err: err}
}
