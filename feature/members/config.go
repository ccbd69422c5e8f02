package members

// Config describes where the authoritative member records live.
type Config struct {
	// Table is the member table.
	Table string `mapstructure:"table" default:"userdb"`
	// IDColumn holds the member's account id.
	IDColumn string `mapstructure:"id_column" default:"discord_id"`
	// KeyColumn holds the directory profile URL or user id.
	KeyColumn string `mapstructure:"key_column" default:"vrchat_url"`
	// OrderBy is an optional ORDER BY clause. Empty keeps the table's natural order.
	OrderBy string `mapstructure:"order_by" default:""`
}
