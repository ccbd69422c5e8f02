package storage

// Config holds configuration for the S3 compatible store that keeps ledger backups.
type Config struct {
	// Endpoint is host[:port] of the store; a scheme prefix is tolerated.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL selects https.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// PathStyle forces path-style bucket addressing, needed by most self-hosted stores.
	PathStyle bool `mapstructure:"path_style" default:"true"`
	// Bucket receives ledger backups. It is created on first use.
	Bucket string `mapstructure:"bucket" default:"roster"`
	// Region is passed to MakeBucket and request signing.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS handshakes and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
