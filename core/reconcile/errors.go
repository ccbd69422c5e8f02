package reconcile

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned when the ledger header lacks an identity column.
var ErrMissingColumn = errors.New("ledger header is missing a required column")

// ResolutionError reports a resolver failure. It aborts the whole run.
type ResolutionError struct {
	ExternalID string
	Key        string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %q for external id %s: %v", e.Key, e.ExternalID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SourceError reports that the authoritative records could not be read.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read authoritative records: %v", e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
