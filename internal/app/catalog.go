package app

import (
	"context"
	"sync"
	"time"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"
)

// connCatalog caches schema names for the completion engine. The explorer's
// schema and column messages keep it warm; a cache miss on Columns falls back
// to a short synchronous lookup against the live connection so the popup can
// still answer for tables the user never expanded.
type connCatalog struct {
	mu      sync.RWMutex
	conn    adapter.Connection
	tables  []string
	columns map[string][]string
}

func newConnCatalog() *connCatalog {
	return &connCatalog{columns: map[string][]string{}}
}

// setConnection swaps the live connection and drops all cached names.
func (c *connCatalog) setConnection(conn adapter.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.tables = nil
	c.columns = map[string][]string{}
}

// setTables replaces the cached table list.
func (c *connCatalog) setTables(tables []schema.Table) {
	names := make([]string, len(tables))
	cols := map[string][]string{}
	for i, t := range tables {
		names[i] = t.Name
		if len(t.Columns) > 0 {
			cc := make([]string, len(t.Columns))
			for j, col := range t.Columns {
				cc[j] = col.Name
			}
			cols[t.Name] = cc
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = names
	c.columns = cols
}

// setColumns caches the column names for one table.
func (c *connCatalog) setColumns(table string, columns []schema.Column) {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns[table] = names
}

// Tables returns the cached table names.
func (c *connCatalog) Tables() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil, adapter.ErrNotConnected
	}
	out := make([]string, len(c.tables))
	copy(out, c.tables)
	return out, nil
}

// Columns returns the cached column names for table, fetching them from the
// connection on a miss. Failures degrade to an empty slice.
func (c *connCatalog) Columns(table string) []string {
	c.mu.RLock()
	cached, ok := c.columns[table]
	conn := c.conn
	c.mu.RUnlock()
	if ok {
		out := make([]string, len(cached))
		copy(out, cached)
		return out
	}
	if conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cols, err := conn.Columns(ctx, table)
	if err != nil {
		return nil
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	c.mu.Lock()
	c.columns[table] = names
	c.mu.Unlock()
	return names
}
