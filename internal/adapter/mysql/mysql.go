// Package mysql provides the MySQL adapter backed by go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"
)

func init() {
	adapter.Register(mysqlAdapter{})
}

// systemSchemas never show up in the database list.
var systemSchemas = map[string]bool{
	"information_schema": true,
	"mysql":              true,
	"performance_schema": true,
	"sys":                true,
}

type mysqlAdapter struct{}

func (mysqlAdapter) Name() string     { return "mysql" }
func (mysqlAdapter) DefaultPort() int { return 3306 }

func (mysqlAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	driverDSN, dbName, err := normalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid dsn: %w", err)
	}

	db, err := sql.Open("mysql", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &mysqlConn{db: db, dbName: dbName}, nil
}

// ---------------------------------------------------------------------------
// DSN normalisation
// ---------------------------------------------------------------------------

// normalizeDSN accepts either a mysql:// URL or a go-sql-driver DSN and
// returns the driver form plus the database name. parseTime is always
// injected so time columns scan into time.Time.
func normalizeDSN(dsn string) (driverDSN string, dbName string, err error) {
	if strings.HasPrefix(dsn, "mysql://") {
		return fromURL(dsn)
	}
	return fromDriverDSN(dsn)
}

func fromURL(dsn string) (string, string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", "", err
	}

	var userInfo string
	if pass, ok := u.User.Password(); ok && pass != "" {
		userInfo = u.User.Username() + ":" + pass
	} else {
		userInfo = u.User.Username()
	}

	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	query := withParseTime(u.RawQuery)

	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", userInfo, u.Hostname(), port, dbName, query),
		dbName, nil
}

// fromDriverDSN passes a go-sql-driver DSN through, injecting parseTime
// and pulling the database name from between the last "/" and "?".
func fromDriverDSN(dsn string) (string, string, error) {
	var dbName string
	if idx := strings.LastIndex(dsn, "/"); idx >= 0 {
		dbName, _, _ = strings.Cut(dsn[idx+1:], "?")
	}

	if !strings.Contains(dsn, "parseTime") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true"
	}
	return dsn, dbName, nil
}

func withParseTime(query string) string {
	switch {
	case query == "":
		return "parseTime=true"
	case strings.Contains(query, "parseTime"):
		return query
	}
	return query + "&parseTime=true"
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// mysqlConn guards dbName because UseDatabase updates it while queries
// may be reading it from other goroutines.
type mysqlConn struct {
	db *sql.DB

	mu     sync.Mutex
	dbName string
}

func (c *mysqlConn) AdapterName() string { return "mysql" }

func (c *mysqlConn) DatabaseName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dbName
}

func (c *mysqlConn) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }
func (c *mysqlConn) Close() error                   { return c.db.Close() }

// Databases lists user databases, system schemas excluded.
func (c *mysqlConn) Databases(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("mysql: show databases: %w", err)
	}
	defer rows.Close()

	var dbs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !systemSchemas[name] {
			dbs = append(dbs, name)
		}
	}
	return dbs, rows.Err()
}

// UseDatabase changes the session's default schema.
func (c *mysqlConn) UseDatabase(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, "USE "+quoteIdent(name)); err != nil {
		return fmt.Errorf("mysql: use %s: %w", name, err)
	}
	c.mu.Lock()
	c.dbName = name
	c.mu.Unlock()
	return nil
}

func (c *mysqlConn) Tables(ctx context.Context) ([]schema.Table, error) {
	const q = `
		SELECT TABLE_NAME
		FROM information_schema.tables
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("mysql: tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var t schema.Table
		if err := rows.Scan(&t.Name); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (c *mysqlConn) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	const q = `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE,
			COLUMN_KEY
		FROM information_schema.columns
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME   = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := c.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			col           schema.Column
			nullable, key string
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &key); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		col.IsPK = key == "PRI"
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

var rowReturning = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH"}

func isSelectQuery(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, kw := range rowReturning {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func (c *mysqlConn) Execute(ctx context.Context, query string) (*adapter.QueryResult, error) {
	start := time.Now()
	if isSelectQuery(query) {
		return c.runQuery(ctx, query, start)
	}
	return c.runExec(ctx, query, start)
}

func (c *mysqlConn) runQuery(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, c.wrap(ctx, "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}

	var data [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("mysql: scan: %w", err)
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

func (c *mysqlConn) runExec(ctx context.Context, query string, start time.Time) (*adapter.QueryResult, error) {
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

func (c *mysqlConn) wrap(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return adapter.ErrCancelled
	}
	return fmt.Errorf("mysql: %s: %w", op, err)
}

// quoteIdent backtick-quotes a MySQL identifier.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
