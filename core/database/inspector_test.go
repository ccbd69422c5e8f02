package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: DriverSQLite,
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE userdb (discord_id INTEGER PRIMARY KEY, vrchat_url TEXT, note TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "userdb")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["discord_id"])
	assert.Equal(t, "text", colMap["vrchat_url"])
	assert.Equal(t, "text", colMap["note"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE userdb (Discord_ID TEXT, vrchat_url TEXT)").Error)

	missing, err := HasColumns(db, "userdb", "discord_id", "vrchat_url")
	assert.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = HasColumns(db, "userdb", "discord_id", "profile")
	assert.NoError(t, err)
	assert.Equal(t, []string{"profile"}, missing)

	_, err = HasColumns(db, "ghost", "discord_id")
	assert.Error(t, err)
}
