// Package roster orchestrates reconciliation runs and exposes them over HTTP.
//
// A Service owns one ledger file. Run fetches the authoritative member records,
// loads the ledger, reconciles the two and, unless it is a dry run, optionally
// uploads the previous file to object storage before saving the result.
// Only one run executes at a time.
//
// # Endpoints
//
//   - GET  /roster              current ledger
//   - GET  /roster/members/:id  one ledger row by discord id
//   - POST /roster/sync         run a reconciliation (?dry_run, ?backup)
package roster
