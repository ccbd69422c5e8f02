// Package members reads the authoritative member table.
//
// Each row pairs an account id with a directory key (a profile URL or user id).
// The table and column names are configurable; the query selects only those two
// columns and returns them in a stable order for the reconciliation engine.
package members
