// Package config provides configuration management for roster-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: connection details for the member database
//   - Source: member table and column names
//   - Ledger: CSV ledger location, seeding and backup settings
//   - Directory: VRChat credentials, session file and request pacing
//   - Storage: S3/MinIO credentials and bucket for ledger backups
//   - Log: Logging level and format
//
// VRCHAT_USERNAME, VRCHAT_PASSWORD and VRCHAT2FA_SECRET are accepted as
// fallbacks for the directory credentials.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Ledger.Path)
package config
