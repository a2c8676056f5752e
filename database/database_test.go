package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, dialect, err := Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, DialectSQLite, dialect)

	for _, table := range []string{
		"applications", "application_versions", "master_keypairs", "recovery_configs",
		"callback_urls", "activations", "activation_history", "recovery_codes",
		"recovery_puks", "temporary_keys", "unique_values", "signature_audit", "shedlock",
	} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// 두 번째 마이그레이션은 아무 것도 바꾸지 않는다
	require.NoError(t, Migrate(db, dialect))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open("postgres", "")
	assert.Error(t, err)
}

func TestForUpdate(t *testing.T) {
	assert.Equal(t, "", DialectSQLite.ForUpdate())
	assert.Equal(t, " FOR UPDATE", DialectMySQL.ForUpdate())
}
