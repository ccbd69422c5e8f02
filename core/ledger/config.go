package ledger

// Config holds configuration for the ledger file.
type Config struct {
	// Path is the location of the CSV ledger.
	Path string `mapstructure:"path" default:"triskel.csv"`
	// AllowMissing seeds a new ledger with DefaultHeader when the file does not exist.
	// When false a missing ledger aborts the run.
	AllowMissing bool `mapstructure:"allow_missing" default:"false"`
	// DefaultHeader is the comma separated column list used to seed a new ledger.
	DefaultHeader string `mapstructure:"default_header" default:"username,discord id,ID Verified"`
	// TrueValue is written into flag columns that are set on new rows.
	TrueValue string `mapstructure:"true_value" default:"true"`
	// FalseValue is written into flag columns that are cleared on new rows.
	FalseValue string `mapstructure:"false_value" default:"false"`
	// BackupEnabled uploads the previous ledger to object storage before it is overwritten.
	BackupEnabled bool `mapstructure:"backup_enabled" default:"false"`
	// BackupPrefix is the object key prefix for ledger backups.
	BackupPrefix string `mapstructure:"backup_prefix" default:"ledger-backups"`
	// BackupKeep is the number of backups retained per ledger. Zero keeps all of them.
	BackupKeep int `mapstructure:"backup_keep" default:"10"`
}

// Columns returns DefaultHeader split into column names.
func (c Config) Columns() []string {
	return SplitHeader(c.DefaultHeader)
}
