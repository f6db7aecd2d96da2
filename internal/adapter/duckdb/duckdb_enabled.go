//go:build duckdb

package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"
)

func init() {
	adapter.Register(duckdbAdapter{})
}

type duckdbAdapter struct{}

func (duckdbAdapter) Name() string     { return "duckdb" }
func (duckdbAdapter) DefaultPort() int { return 0 }

func (duckdbAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	path := strings.TrimPrefix(dsn, "duckdb://")
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	return &duckdbConn{db: db, path: path}, nil
}

type duckdbConn struct {
	db   *sql.DB
	path string
}

func (c *duckdbConn) DatabaseName() string { return c.path }
func (c *duckdbConn) AdapterName() string  { return "duckdb" }

func (c *duckdbConn) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }
func (c *duckdbConn) Close() error                   { return c.db.Close() }

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

func (c *duckdbConn) Databases(ctx context.Context) ([]string, error) {
	const q = "SELECT database_name FROM duckdb_databases() ORDER BY database_name"
	return c.stringColumn(ctx, q, "databases")
}

func (c *duckdbConn) UseDatabase(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("USE %q", name)); err != nil {
		return fmt.Errorf("duckdb: use %s: %w", name, err)
	}
	return nil
}

func (c *duckdbConn) Tables(ctx context.Context) ([]schema.Table, error) {
	const q = `SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name`

	names, err := c.stringColumn(ctx, q, "tables")
	if err != nil {
		return nil, err
	}

	tables := make([]schema.Table, len(names))
	for i, name := range names {
		tables[i] = schema.Table{Name: name}
	}
	return tables, nil
}

func (c *duckdbConn) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	const q = `SELECT column_name,
			data_type,
			CASE WHEN is_nullable = 'YES' THEN true ELSE false END
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := c.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var col schema.Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable); err != nil {
			return nil, fmt.Errorf("duckdb: columns scan: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// stringColumn collects a single-column result set.
func (c *duckdbConn) stringColumn(ctx context.Context, q, op string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("duckdb: %s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("duckdb: %s scan: %w", op, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// DuckDB accepts bare FROM clauses as queries, so that prefix counts as
// row-returning too.
var rowReturning = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA", "FROM"}

func isSelectQuery(q string) bool {
	upper := strings.ToUpper(q)
	for _, prefix := range rowReturning {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func (c *duckdbConn) Execute(ctx context.Context, query string) (*adapter.QueryResult, error) {
	start := time.Now()
	if isSelectQuery(strings.TrimSpace(query)) {
		return c.runQuery(ctx, query, start)
	}
	return c.runExec(ctx, query, start)
}

func (c *duckdbConn) runQuery(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapter.ErrCancelled
		}
		return nil, fmt.Errorf("duckdb: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("duckdb: columns: %w", err)
	}

	var data [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("duckdb: scan: %w", err)
		}

		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("duckdb: rows iteration: %w", err)
	}

	return &adapter.QueryResult{
		Columns:  cols,
		Rows:     data,
		RowCount: int64(len(data)),
		Duration: time.Since(start),
		IsSelect: true,
	}, nil
}

func (c *duckdbConn) runExec(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("duckdb: exec: %w", err)
	}
	affected, _ := res.RowsAffected()

	return &adapter.QueryResult{
		RowCount: affected,
		Duration: time.Since(start),
		Message:  fmt.Sprintf("%d row(s) affected", affected),
	}, nil
}
