// Package postgres provides the PostgreSQL adapter on top of a pgx
// connection pool.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"
)

func init() {
	adapter.Register(pgAdapter{})
}

type pgAdapter struct{}

func (pgAdapter) Name() string     { return "postgres" }
func (pgAdapter) DefaultPort() int { return 5432 }

func (pgAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &pgConn{pool: pool, dsn: dsn, dbName: extractDBName(dsn)}, nil
}

// extractDBName pulls the database name out of a DSN, handling both the
// URL form and the keyword=value form.
func extractDBName(dsn string) string {
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	for _, part := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(part, "dbname="); ok {
			return name
		}
	}
	return ""
}

// replaceDBName rewrites a DSN to point at another database on the same
// server.
func replaceDBName(dsn, name string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		u.Path = "/" + name
		return u.String()
	}

	parts := strings.Fields(dsn)
	for i, part := range parts {
		if strings.HasPrefix(part, "dbname=") {
			parts[i] = "dbname=" + name
			return strings.Join(parts, " ")
		}
	}
	return strings.Join(append(parts, "dbname="+name), " ")
}

// pgConn holds the pool behind a mutex because UseDatabase swaps it out
// for a new one mid-flight.
type pgConn struct {
	mu     sync.Mutex
	pool   *pgxpool.Pool
	dsn    string
	dbName string
}

func (c *pgConn) AdapterName() string { return "postgres" }

func (c *pgConn) DatabaseName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dbName
}

func (c *pgConn) getPool() *pgxpool.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

func (c *pgConn) Ping(ctx context.Context) error {
	return c.getPool().Ping(ctx)
}

func (c *pgConn) Close() error {
	c.getPool().Close()
	return nil
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

// Databases lists the server's non-template databases.
func (c *pgConn) Databases(ctx context.Context) ([]string, error) {
	const q = `SELECT datname FROM pg_database
		WHERE datistemplate = false
		ORDER BY datname`

	rows, err := c.getPool().Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("databases: %w", err)
	}
	defer rows.Close()

	var dbs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("databases scan: %w", err)
		}
		dbs = append(dbs, name)
	}
	return dbs, rows.Err()
}

// UseDatabase opens a new pool against the target database and retires
// the old one. PostgreSQL has no USE statement, a new session is the only
// way to switch.
func (c *pgConn) UseDatabase(ctx context.Context, name string) error {
	dsn := replaceDBName(c.dsn, name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("postgres use %s: %w", name, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres use %s: %w", name, err)
	}

	c.mu.Lock()
	old := c.pool
	c.pool = pool
	c.dsn = dsn
	c.dbName = name
	c.mu.Unlock()

	old.Close()
	return nil
}

// Tables lists base tables across user schemas. Names outside public are
// qualified as schema.table.
func (c *pgConn) Tables(ctx context.Context) ([]schema.Table, error) {
	const q = `SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND table_type = 'BASE TABLE'
		ORDER BY table_schema, table_name`

	rows, err := c.getPool().Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var schemaName, name string
		if err := rows.Scan(&schemaName, &name); err != nil {
			return nil, fmt.Errorf("tables scan: %w", err)
		}
		if schemaName != "public" {
			name = schemaName + "." + name
		}
		tables = append(tables, schema.Table{Name: name})
	}
	return tables, rows.Err()
}

func (c *pgConn) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	schemaName := "public"
	if i := strings.IndexByte(table, '.'); i >= 0 {
		schemaName, table = table[:i], table[i+1:]
	}

	pk, err := c.primaryKeyColumns(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}

	const q = `SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name   = $2
		ORDER BY ordinal_position`

	rows, err := c.getPool().Query(ctx, q, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, typ, nullable string
		if err := rows.Scan(&name, &typ, &nullable); err != nil {
			return nil, fmt.Errorf("columns scan: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:     name,
			Type:     typ,
			Nullable: nullable == "YES",
			IsPK:     pk[name],
		})
	}
	return cols, rows.Err()
}

// primaryKeyColumns collects the names making up the table's primary key.
func (c *pgConn) primaryKeyColumns(ctx context.Context, schemaName, table string) (map[string]bool, error) {
	const q = `SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = ($1 || '.' || $2)::regclass
		  AND i.indisprimary`

	rows, err := c.getPool().Query(ctx, q, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	defer rows.Close()

	pk := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("primary keys scan: %w", err)
		}
		pk[name] = true
	}
	return pk, rows.Err()
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

func (c *pgConn) Execute(ctx context.Context, query string) (*adapter.QueryResult, error) {
	start := time.Now()
	if isSelectQuery(query) {
		return c.runQuery(ctx, query, start)
	}
	return c.runExec(ctx, query, start)
}

func (c *pgConn) runQuery(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	rows, err := c.getPool().Query(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapter.ErrCancelled
		}
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	var data [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("execute values: %w", err)
		}
		data = append(data, valuesToStrings(vals))
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, adapter.ErrCancelled
		}
		return nil, fmt.Errorf("execute rows: %w", err)
	}

	return &adapter.QueryResult{
		Columns:  cols,
		Rows:     data,
		RowCount: int64(len(data)),
		Duration: time.Since(start),
		IsSelect: true,
	}, nil
}

func (c *pgConn) runExec(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	tag, err := c.getPool().Exec(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapter.ErrCancelled
		}
		return nil, fmt.Errorf("execute: %w", err)
	}

	return &adapter.QueryResult{
		RowCount: tag.RowsAffected(),
		Duration: time.Since(start),
		Message:  tag.String(),
	}, nil
}

// ---------------------------------------------------------------------------
// Statement classification
// ---------------------------------------------------------------------------

var rowReturning = []string{"SELECT", "WITH", "VALUES", "TABLE", "SHOW", "EXPLAIN"}

// stripLeadingComments removes any -- and /* */ comments ahead of the
// first real token. It returns "" when the statement is comments only.
func stripLeadingComments(q string) string {
	q = strings.TrimSpace(q)
	for {
		switch {
		case strings.HasPrefix(q, "--"):
			i := strings.Index(q, "\n")
			if i < 0 {
				return ""
			}
			q = strings.TrimSpace(q[i+1:])

		case strings.HasPrefix(q, "/*"):
			i := strings.Index(q, "*/")
			if i < 0 {
				return ""
			}
			q = strings.TrimSpace(q[i+2:])

		default:
			return q
		}
	}
}

func isSelectQuery(query string) bool {
	upper := strings.ToUpper(stripLeadingComments(query))
	if upper == "" {
		return false
	}
	for _, kw := range rowReturning {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Value rendering
// ---------------------------------------------------------------------------

func valuesToStrings(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = valueToString(v)
	}
	return out
}

// numList renders a numeric array in Postgres brace syntax.
func numList[T int32 | int64 | float64](vals []T, format string) string {
	parts := make([]string, len(vals))
	for i, n := range vals {
		parts[i] = fmt.Sprintf(format, n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// valueToString renders one cell value the way psql shows it.
func valueToString(v any) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case bool:
		return fmt.Sprintf("%t", val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case [16]byte: // uuid
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case []string:
		return "{" + strings.Join(val, ",") + "}"
	case []int32:
		return numList(val, "%d")
	case []int64:
		return numList(val, "%d")
	case []float64:
		return numList(val, "%g")
	case []bool:
		parts := make([]string, len(val))
		for i, b := range val {
			parts[i] = fmt.Sprintf("%t", b)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case pgtype.Numeric:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return "NULL"
		}
		if s, ok := dv.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", dv)
	}
	return fmt.Sprintf("%v", v)
}
