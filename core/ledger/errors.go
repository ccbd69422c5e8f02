package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeader is reported when a ledger has no header row.
	ErrNoHeader = errors.New("ledger has no header row")
	// ErrDuplicateColumn is reported when a header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column in ledger header")
)

// FormatError reports a ledger that cannot be parsed into a header and rows.
// Row length mismatches are repaired while loading and never produce a FormatError.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ledger %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("ledger %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a ledger that cannot be read or written.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ledger %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
