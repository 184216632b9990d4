package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Run(db))
	version, err := GetCurrentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, AllMigrations[len(AllMigrations)-1].Version, version)

	// a second run applies nothing
	require.NoError(t, Run(db))
	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, len(AllMigrations), applied)
}
