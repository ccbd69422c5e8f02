// Package ledger reads and writes the roster ledger, a CSV table of members.
//
// The first row names the columns. Two columns carry identity: "username" (the
// display name resolved from the directory) and "discord id" (the member's account
// id). Every other column is a per-member flag whose meaning the ledger does not
// interpret; flags are preserved byte for byte across a load/save cycle.
//
// # Loading
//
// Load tolerates historically malformed files: rows shorter than the header are
// padded with empty strings and longer rows are truncated. Only a file without a
// usable header is rejected with a FormatError. A missing file loads as an empty Set
// so the caller decides whether to seed a new ledger.
//
// # Saving
//
// Save writes the whole ledger to a temporary file and renames it into place.
// Backup and PruneBackups keep timestamped copies in object storage.
package ledger
