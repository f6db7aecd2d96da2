// Package schema defines the catalog value types passed from the
// adapters to the UI and the completion catalog. Adapters fill in what
// their engine exposes; a zero value means the detail is unknown.
package schema

// Table is one table in the connected database. Columns stays empty
// until the table is inspected.
type Table struct {
	Name    string
	Columns []Column
}

// Column is one column of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	IsPK     bool
}
