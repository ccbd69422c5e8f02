// Package database handles database connections and schema inspection.
//
// It wraps GORM and selects the dialector (postgres via pgx, MySQL, or SQLite) from
// the application's configuration. The roster's authoritative member table lives here.
//
// # Connect
//
// Connect opens the connection, sizes the pool and pings the server with the configured
// timeout. A full DATABASE_URL style connection string overrides the discrete fields.
//
// # Schema Inspection
//
// GetTableColumns and HasColumns let the member source verify that the configured
// identifier columns exist before a run starts, so a misconfigured table fails fast
// instead of halfway through a reconciliation.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.HasColumns(db, "userdb", "discord_id", "vrchat_url")
package database
