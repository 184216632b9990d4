package migrations

import (
	"database/sql"
	"errors"
	"fmt"
)

// Migration is one versioned schema change of the history database
type Migration struct {
	Version int
	Name    string
	Up      string
}

// AllMigrations lists every migration by ascending version
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "create history table",
		Up: `
			CREATE TABLE IF NOT EXISTS history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME NOT NULL,
				environment TEXT NOT NULL DEFAULT '',
				request_name TEXT NOT NULL DEFAULT '',
				method TEXT NOT NULL,
				url TEXT NOT NULL,
				headers TEXT NOT NULL,
				body TEXT,
				response_status INTEGER NOT NULL,
				response_status_text TEXT NOT NULL,
				response_headers TEXT NOT NULL,
				response_body TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				error TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
		`,
	},
	{
		Version: 2,
		Name:    "index history by environment and request name",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_history_environment ON history(environment);
			CREATE INDEX IF NOT EXISTS idx_history_request_name ON history(request_name);
		`,
	},
}

// InitSchema creates the table that records applied migrations
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Run applies every migration newer than the recorded version, each in
// its own transaction
func Run(db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return err
	}

	current, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(m.Up); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetCurrentVersion returns the highest applied migration version, 0 for a
// fresh database
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return version, nil
}
