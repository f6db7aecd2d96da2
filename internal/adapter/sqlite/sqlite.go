// Package sqlite provides the SQLite adapter, backed by the pure Go
// modernc.org/sqlite driver so no cgo is needed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"

	_ "modernc.org/sqlite"
)

func init() {
	adapter.Register(sqliteAdapter{})
}

type sqliteAdapter struct{}

func (sqliteAdapter) Name() string     { return "sqlite" }
func (sqliteAdapter) DefaultPort() int { return 0 }

func (sqliteAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	path := normalizeDSN(dsn)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite enable foreign keys: %w", err)
	}

	return &sqliteConn{db: db, name: displayName(path)}, nil
}

// normalizeDSN strips the URI prefixes accepted in connection forms down to
// a plain filesystem path (or :memory:).
func normalizeDSN(dsn string) string {
	for _, prefix := range []string{"sqlite://", "file:"} {
		if strings.HasPrefix(dsn, prefix) {
			return dsn[len(prefix):]
		}
	}
	return dsn
}

// displayName is the base filename, except for in-memory databases which
// keep the :memory: marker verbatim.
func displayName(path string) string {
	if path == ":memory:" {
		return path
	}
	return filepath.Base(path)
}

type sqliteConn struct {
	db   *sql.DB
	name string
}

func (c *sqliteConn) AdapterName() string  { return "sqlite" }
func (c *sqliteConn) DatabaseName() string { return c.name }

func (c *sqliteConn) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }
func (c *sqliteConn) Close() error                   { return c.db.Close() }

// Databases lists the one file this connection has open. SQLite has no
// server-side catalog to enumerate.
func (c *sqliteConn) Databases(ctx context.Context) ([]string, error) {
	return []string{c.name}, nil
}

func (c *sqliteConn) UseDatabase(ctx context.Context, name string) error {
	if name == c.name {
		return nil
	}
	return fmt.Errorf("sqlite cannot switch to database %q", name)
}

func (c *sqliteConn) Tables(ctx context.Context) ([]schema.Table, error) {
	const q = "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"

	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var t schema.Table
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("sqlite tables scan: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (c *sqliteConn) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite columns scan: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:     name,
			Type:     typ,
			Nullable: notNull == 0,
			IsPK:     pk > 0,
		})
	}
	return cols, rows.Err()
}

// Statement keywords that produce a row set rather than an affected count.
var rowReturning = []string{"SELECT", "PRAGMA", "EXPLAIN", "WITH"}

func returnsRows(query string) bool {
	upper := strings.TrimSpace(strings.ToUpper(query))
	for _, kw := range rowReturning {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func (c *sqliteConn) Execute(ctx context.Context, query string) (*adapter.QueryResult, error) {
	start := time.Now()
	if returnsRows(query) {
		return c.runQuery(ctx, query, start)
	}
	return c.runExec(ctx, query, start)
}

func (c *sqliteConn) runQuery(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, c.wrap(ctx, "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite columns: %w", err)
	}

	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(sql.NullString)
	}

	var data [][]string
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		row := make([]string, len(cols))
		for i, d := range dest {
			if ns := d.(*sql.NullString); ns.Valid {
				row[i] = ns.String
			} else {
				row[i] = "NULL"
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, c.wrap(ctx, "rows", err)
	}

	return &adapter.QueryResult{
		Columns:  cols,
		Rows:     data,
		RowCount: int64(len(data)),
		Duration: time.Since(start),
		IsSelect: true,
	}, nil
}

func (c *sqliteConn) runExec(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, c.wrap(ctx, "exec", err)
	}
	affected, _ := res.RowsAffected()

	return &adapter.QueryResult{
		RowCount: affected,
		Duration: time.Since(start),
		Message:  fmt.Sprintf("%d row(s) affected", affected),
	}, nil
}

// wrap maps a context cancellation to the shared sentinel so callers can
// tell a user abort apart from a real failure.
func (c *sqliteConn) wrap(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return adapter.ErrCancelled
	}
	return fmt.Errorf("sqlite %s: %w", op, err)
}
