// Package msg holds the Bubble Tea messages that flow between the root
// model and its panes. Keeping them here avoids import cycles between
// the UI packages.
package msg

import (
	"time"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/schema"
)

// Pane identifies a focusable region of the screen.
type Pane int

const (
	PaneExplorer Pane = iota
	PaneEditor
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneExplorer:
		return "explorer"
	case PaneEditor:
		return "editor"
	case PaneResults:
		return "results"
	}
	return "unknown"
}

// FocusMsg moves input focus to a pane.
type FocusMsg struct {
	Pane Pane
}

// ---------------------------------------------------------------------------
// Connection lifecycle
// ---------------------------------------------------------------------------

// ConnectMsg announces an established connection.
type ConnectMsg struct {
	Conn   adapter.Connection
	Engine string
	DSN    string
}

// ConnectErrMsg announces a failed connection attempt.
type ConnectErrMsg struct {
	Err error
}

// DisconnectMsg announces that the connection was closed.
type DisconnectMsg struct{}

// UseDatabaseMsg asks to switch the active database.
type UseDatabaseMsg struct {
	Name string
}

// DatabaseSwitchedMsg confirms a database switch. The explorer and the
// completion catalog reload on it.
type DatabaseSwitchedMsg struct {
	Name string
}

// ---------------------------------------------------------------------------
// Schema introspection
// ---------------------------------------------------------------------------

// SchemaLoadedMsg carries the result of a full schema scan.
type SchemaLoadedMsg struct {
	Databases []string
	Tables    []schema.Table
	Current   string
}

// SchemaErrMsg reports a failed schema scan.
type SchemaErrMsg struct {
	Err error
}

// LoadColumnsMsg asks for one table's columns, usually because its node
// was expanded in the explorer.
type LoadColumnsMsg struct {
	Table string
}

// ColumnsLoadedMsg delivers the columns fetched for one table.
type ColumnsLoadedMsg struct {
	Table   string
	Columns []schema.Column
}

// RefreshSchemaMsg asks for a schema rescan.
type RefreshSchemaMsg struct{}

// ---------------------------------------------------------------------------
// Query execution
// ---------------------------------------------------------------------------

// ExecuteQueryMsg asks for a statement to be run.
type ExecuteQueryMsg struct {
	Query string
}

// QueryStartedMsg marks the start of a run. RunID pairs the later result
// or error with this start.
type QueryStartedMsg struct {
	RunID uint64
}

// QueryResultMsg delivers a completed run.
type QueryResultMsg struct {
	Result *adapter.QueryResult
	RunID  uint64
}

// QueryErrMsg delivers a failed run.
type QueryErrMsg struct {
	Err   error
	RunID uint64
}

// ---------------------------------------------------------------------------
// UI
// ---------------------------------------------------------------------------

// StatusMsg puts a transient message in the status bar.
type StatusMsg struct {
	Text     string
	IsError  bool
	Duration time.Duration
}

// InsertTextMsg inserts text into the editor at the cursor.
type InsertTextMsg struct {
	Text string
}
