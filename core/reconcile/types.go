package reconcile

import (
	"go.uber.org/zap"
)

// AuthoritativeRecord is one member as the authoritative table knows them.
type AuthoritativeRecord struct {
	// ExternalID is the member's account id; it is compared to the ledger's "discord id".
	ExternalID string `json:"external_id"`

	// ResolutionKey is handed to the Resolver to look up the display name.
	ResolutionKey string `json:"resolution_key"`
}

// ActionType represents the kind of change applied to the ledger.
type ActionType string

const (
	// ActionRepair overwrites the external id of a row whose username matched.
	ActionRepair ActionType = "repair"
	// ActionCreate appends a new row.
	ActionCreate ActionType = "create"
)

// Action records one change made during a run.
type Action struct {
	// Type specifies the change.
	Type ActionType `json:"type"`

	// ExternalID is the authoritative id that caused the change.
	ExternalID string `json:"external_id"`

	// Username is the resolved display name.
	Username string `json:"username"`

	// PreviousID is the external id the row held before a repair.
	PreviousID string `json:"previous_id,omitempty"`

	// Row is the index of the affected record in the resulting ledger.
	Row int `json:"row"`
}

// Summary provides aggregate counts for a run.
type Summary struct {
	// Total is the number of authoritative records processed.
	Total int `json:"total"`

	// Matched counts records already present by external id.
	Matched int `json:"matched"`

	// Resolved counts resolver calls.
	Resolved int `json:"resolved"`

	// Repaired counts rows whose external id was overwritten.
	Repaired int `json:"repaired"`

	// Created counts appended rows.
	Created int `json:"created"`
}

// Report describes what a run changed.
type Report struct {
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Changed reports whether the run modified the ledger.
func (r *Report) Changed() bool {
	return len(r.Actions) > 0
}

// Options tunes how new rows are synthesized.
type Options struct {
	// TrueValue is written into the verified column of new rows. Defaults to "true".
	TrueValue string

	// FalseValue is written into every other column of new rows. Defaults to "false".
	FalseValue string

	// VerifiedColumn is set to TrueValue on new rows when present in the header.
	// Defaults to ledger.ColumnVerified.
	VerifiedColumn string

	// Logger receives per-record progress. Nil disables logging.
	Logger *zap.Logger
}
