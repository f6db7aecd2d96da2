//go:build !duckdb

// The DuckDB driver needs cgo, so it sits behind the "duckdb" build
// tag. Default builds register this stub: the engine name stays
// selectable in the connection manager, but connecting fails with a
// message that names the required tag.
package duckdb

import (
	"context"
	"errors"

	"github.com/dbshell/dbshell/internal/adapter"
)

var errDisabled = errors.New("DuckDB support not compiled in. Rebuild with -tags duckdb")

func init() {
	adapter.Register(stubAdapter{})
}

type stubAdapter struct{}

func (stubAdapter) Name() string     { return "duckdb" }
func (stubAdapter) DefaultPort() int { return 0 }

func (stubAdapter) Connect(context.Context, string) (adapter.Connection, error) {
	return nil, errDisabled
}
