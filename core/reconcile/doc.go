// Package reconcile aligns the roster ledger with the authoritative member table.
//
// The two sources key members differently. The table knows an account id and a
// directory key; the ledger knows an account id ("discord id") and a display name
// ("username"). Reconcile walks the authoritative records in order and, for each one
// whose account id is not in the ledger yet, resolves the display name through a
// Resolver and either repairs the row that already carries that name or appends a
// new row with default flags.
//
// # Failure Policy
//
// A run is all or nothing. The first resolver failure aborts it with a
// *ResolutionError and no ledger is returned, so the caller never persists a
// partially reconciled file. Source failures are reported as *SourceError by the
// Source implementations before the engine is invoked.
//
// # Caching
//
// CachedResolver keeps resolved names for a TTL with singleflight protection, which
// matters for the long running HTTP server where successive runs may resolve the
// same keys.
//
// # Usage Example
//
//	records, err := source.Fetch(ctx)
//	set, err := ledger.Load("triskel.csv")
//	updated, report, err := reconcile.Reconcile(ctx, records, set, resolver, reconcile.Options{})
//	if err == nil {
//	    err = ledger.Save(updated, "triskel.csv")
//	}
package reconcile
