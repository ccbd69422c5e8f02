package ledger

import (
	"slices"
	"strings"

	"roster-sync/core/utils"
)

// Column names the reconciliation relies on. Every other column is an opaque flag.
const (
	ColumnUsername   = "username"
	ColumnExternalID = "discord id"
	ColumnVerified   = "ID Verified"
)

// Record is one ledger row keyed by column name.
// Column order is owned by the Set header.
type Record map[string]string

// Get returns the value of a column, or "" when absent.
func (r Record) Get(column string) string {
	return r[column]
}

// Flag interprets a column as a boolean ("true", "True", "1").
func (r Record) Flag(column string) bool {
	return utils.ToBool(r[column])
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Set is a ledger: an ordered header and the ordered rows that share it.
type Set struct {
	Header  []string `json:"header"`
	Records []Record `json:"records"`
}

// NewSet returns an empty ledger with the given header.
func NewSet(header []string) *Set {
	return &Set{
		Header:  slices.Clone(header),
		Records: []Record{},
	}
}

// Empty reports whether the set has no header, as returned by Load for a missing file.
func (s *Set) Empty() bool {
	return len(s.Header) == 0
}

// Len returns the number of records.
func (s *Set) Len() int {
	return len(s.Records)
}

// HasColumn reports whether the header contains the column.
func (s *Set) HasColumn(name string) bool {
	return slices.Contains(s.Header, name)
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{
		Header:  slices.Clone(s.Header),
		Records: make([]Record, len(s.Records)),
	}
	for i, r := range s.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// NewRecord returns a record with every header column set to fill.
func (s *Set) NewRecord(fill string) Record {
	r := make(Record, len(s.Header))
	for _, col := range s.Header {
		r[col] = fill
	}
	return r
}

// Row returns the record's values aligned to the header.
func (s *Set) Row(r Record) []string {
	row := make([]string, len(s.Header))
	for i, col := range s.Header {
		row[i] = r[col]
	}
	return row
}

// SplitHeader parses a comma separated column list, trimming blanks.
func SplitHeader(raw string) []string {
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
