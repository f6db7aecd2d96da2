// Package adapter is the seam between the UI and the database engines.
// Each engine lives in a subpackage that registers itself at init time;
// main pulls the wanted engines in with blank imports.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbshell/dbshell/internal/schema"
)

var (
	// ErrNotConnected is returned by operations that need an open
	// connection when there is none.
	ErrNotConnected = errors.New("not connected to database")

	// ErrCancelled marks a query aborted through its context.
	ErrCancelled = errors.New("query cancelled")
)

// Adapter opens connections for one database engine.
type Adapter interface {
	Connect(ctx context.Context, dsn string) (Connection, error)
	Name() string
	DefaultPort() int
}

// Connection is an open session against one database.
type Connection interface {
	// Catalog introspection.
	Databases(ctx context.Context) ([]string, error)
	UseDatabase(ctx context.Context, name string) error
	Tables(ctx context.Context) ([]schema.Table, error)
	Columns(ctx context.Context, table string) ([]schema.Column, error)

	// Statement execution.
	Execute(ctx context.Context, query string) (*QueryResult, error)

	// Lifecycle.
	Ping(ctx context.Context) error
	Close() error

	// Identity, for status display.
	DatabaseName() string
	AdapterName() string
}

// QueryResult is the outcome of one executed statement. Row-returning
// statements carry Columns and Rows; everything else carries Message and
// an affected-row count.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int64
	Duration time.Duration
	IsSelect bool
	Message  string
}

// Registry maps engine names to their adapters.
var Registry = map[string]Adapter{}

// Register puts an adapter into Registry under its own name.
func Register(a Adapter) {
	Registry[a.Name()] = a
}

// Lookup finds the adapter for an engine name.
func Lookup(name string) (Adapter, error) {
	a, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown database engine: %s", name)
	}
	return a, nil
}
