// Package history stores executed queries in a small SQLite database so
// they survive restarts and can be searched from the UI.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dbshell/dbshell/internal/config"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	query         TEXT NOT NULL,
	engine        TEXT,
	database_name TEXT,
	executed_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
	duration_ms   INTEGER,
	row_count     INTEGER,
	is_error      BOOLEAN DEFAULT FALSE
)`

	entryColumns = "id, query, engine, database_name, executed_at, duration_ms, row_count, is_error"
)

// Entry represents a single executed query in the history log.
type Entry struct {
	ID           int64
	Query        string
	Engine       string
	DatabaseName string
	ExecutedAt   time.Time
	DurationMS   int64
	RowCount     int64
	IsError      bool
}

// History provides SQLite-backed query history storage.
type History struct {
	db *sql.DB
}

// Open opens (or creates) a history database at path and ensures the schema
// exists.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	return &History{db: db}, nil
}

// New opens the history database at its default location,
// ConfigDir()/history.db, creating the directory if needed.
func New() (*History, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("history: config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}
	return Open(filepath.Join(dir, "history.db"))
}

// Add inserts a new history entry.
func (h *History) Add(e Entry) error {
	const insert = `INSERT INTO history
		(query, engine, database_name, executed_at, duration_ms, row_count, is_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := h.db.Exec(insert,
		e.Query, e.Engine, e.DatabaseName, e.ExecutedAt,
		e.DurationMS, e.RowCount, e.IsError)
	if err != nil {
		return fmt.Errorf("history add: %w", err)
	}
	return nil
}

// Recent returns the newest entries, up to limit, newest first.
func (h *History) Recent(limit int) ([]Entry, error) {
	return h.query(
		"SELECT "+entryColumns+" FROM history ORDER BY id DESC LIMIT ?",
		limit)
}

// Search returns entries whose query text matches pattern under SQL LIKE,
// newest first, up to limit.
func (h *History) Search(pattern string, limit int) ([]Entry, error) {
	return h.query(
		"SELECT "+entryColumns+" FROM history WHERE query LIKE ? ORDER BY id DESC LIMIT ?",
		pattern, limit)
}

// Clear deletes all history entries.
func (h *History) Clear() error {
	if _, err := h.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) query(q string, args ...any) ([]Entry, error) {
	rows, err := h.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.Query, &e.Engine, &e.DatabaseName,
			&e.ExecutedAt, &e.DurationMS, &e.RowCount, &e.IsError)
		if err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return entries, nil
}
