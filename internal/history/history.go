package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/migrations"
	"github.com/studiowebux/restsynth/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// ErrEntryNotFound is returned by Get for an unknown id
var ErrEntryNotFound = errors.New("history entry not found")

// Manager records executed requests in a SQLite database
type Manager struct {
	db *sql.DB
}

// NewManager opens (or creates) the history database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save records a request and its result
func (m *Manager) Save(environment, requestName string, req types.RequestData, result *types.RequestResult) (int64, error) {
	if result == nil {
		result = &types.RequestResult{}
	}

	headersJSON, err := json.Marshal(req.Headers)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal headers: %w", err)
	}

	responseHeadersJSON, err := json.Marshal(result.Headers)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal response headers: %w", err)
	}

	query := `
		INSERT INTO history (
			timestamp, environment, request_name, method, url, headers, body,
			response_status, response_status_text, response_headers, response_body,
			duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := m.db.Exec(query,
		time.Now().UTC().Format(timestampLayout),
		environment,
		requestName,
		req.Method,
		req.URI,
		string(headersJSON),
		req.Body,
		result.Status,
		result.StatusText,
		string(responseHeadersJSON),
		result.Body,
		result.Duration,
		result.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save history entry: %w", err)
	}

	return res.LastInsertId()
}

// List returns the newest entries first. An empty environment lists every
// entry; limit <= 0 means no limit.
func (m *Manager) List(environment string, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	query := selectColumns + `
		FROM history
		WHERE ? = '' OR environment = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, environment, environment, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns a single entry
func (m *Manager) Get(id int64) (*types.HistoryEntry, error) {
	rows, err := m.db.Query(selectColumns+" FROM history WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	return &entries[0], nil
}

const selectColumns = `
	SELECT id, timestamp, environment, request_name, method, url, headers, body,
	       response_status, response_status_text, response_headers, response_body,
	       duration_ms, error`

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	entries := []types.HistoryEntry{}

	for rows.Next() {
		var entry types.HistoryEntry
		var timestamp string
		var headersJSON, responseHeadersJSON string
		var body, errorMsg sql.NullString

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.Environment,
			&entry.RequestName,
			&entry.Method,
			&entry.URL,
			&headersJSON,
			&body,
			&entry.ResponseStatus,
			&entry.ResponseStatusText,
			&responseHeadersJSON,
			&entry.ResponseBody,
			&entry.Duration,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if err := json.Unmarshal([]byte(headersJSON), &entry.Headers); err != nil {
			entry.Headers = nil
		}
		if err := json.Unmarshal([]byte(responseHeadersJSON), &entry.ResponseHeaders); err != nil {
			entry.ResponseHeaders = map[string]string{}
		}

		// Timestamps are stored in UTC; sqlite3 may hand DATETIME columns back in RFC3339
		parsedTime, err := time.ParseInLocation(timestampLayout, timestamp, time.UTC)
		if err != nil {
			if parsedTime, err = time.Parse(time.RFC3339, timestamp); err != nil {
				parsedTime = time.Time{}
			}
		}
		entry.Timestamp = parsedTime.Local().Format(time.RFC3339)
		entry.Body = body.String
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear deletes every entry
func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Delete removes one entry
func (m *Manager) Delete(id int64) error {
	if _, err := m.db.Exec("DELETE FROM history WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// Count returns the total number of entries
func (m *Manager) Count() (int, error) {
	var count int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
