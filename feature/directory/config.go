package directory

// Config holds configuration for the VRChat directory client.
type Config struct {
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.vrchat.cloud/api/1"`
	// Username is the account used to query the directory.
	Username string `mapstructure:"username" default:""`
	// Password is the account password.
	Password string `mapstructure:"password" default:""`
	// TOTPSecret is the base32 secret used to answer two-factor challenges.
	TOTPSecret string `mapstructure:"totp_secret" default:""`
	// UserAgent identifies the client; the API rejects requests without one.
	UserAgent string `mapstructure:"user_agent" default:"roster-sync/1.0"`
	// CookieFile persists the session between runs. Empty disables persistence.
	CookieFile string `mapstructure:"cookie_file" default:"cookies.json"`
	// RequestIntervalMS is the minimum spacing between API requests.
	RequestIntervalMS int `mapstructure:"request_interval_ms" default:"500"`
	// MaxRetries bounds retries of rate limited or failed requests.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// CacheTTLSeconds keeps resolved names in memory between runs. Zero disables the cache.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
}
