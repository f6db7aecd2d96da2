package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/config"
	"github.com/dbshell/dbshell/internal/schema"
	"github.com/dbshell/dbshell/internal/ui/suggestbox"
)

// ---------------------------------------------------------------------------
// Test fixtures
// ---------------------------------------------------------------------------

type mockConn struct {
	databases    []string
	tables       []schema.Table
	columns      map[string][]schema.Column
	current      string
	execResult   *adapter.QueryResult
	execErr      error
	columnsCalls []string
	closed       bool
}

func (c *mockConn) Databases(ctx context.Context) ([]string, error) { return c.databases, nil }
func (c *mockConn) UseDatabase(ctx context.Context, name string) error {
	c.current = name
	return nil
}
func (c *mockConn) Tables(ctx context.Context) ([]schema.Table, error) { return c.tables, nil }
func (c *mockConn) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	c.columnsCalls = append(c.columnsCalls, table)
	cols, ok := c.columns[table]
	if !ok {
		return nil, errors.New("no such table: " + table)
	}
	return cols, nil
}
func (c *mockConn) Execute(ctx context.Context, query string) (*adapter.QueryResult, error) {
	if c.execErr != nil {
		return nil, c.execErr
	}
	return c.execResult, nil
}
func (c *mockConn) Ping(ctx context.Context) error { return nil }
func (c *mockConn) Close() error {
	c.closed = true
	return nil
}
func (c *mockConn) DatabaseName() string { return c.current }
func (c *mockConn) AdapterName() string  { return "mock" }

func newMockConn() *mockConn {
	return &mockConn{
		databases: []string{"app"},
		current:   "app",
		tables: []schema.Table{
			{Name: "users"},
			{Name: "orders"},
		},
		columns: map[string][]schema.Column{
			"users":  {{Name: "id", IsPK: true}, {Name: "name"}, {Name: "email"}},
			"orders": {{Name: "id", IsPK: true}, {Name: "user_id"}},
		},
		execResult: &adapter.QueryResult{
			Columns:  []string{"id", "name"},
			Rows:     [][]string{{"1", "alice"}},
			RowCount: 1,
			IsSelect: true,
		},
	}
}

func newTestModel() Model {
	return New(Options{Config: config.DefaultConfig()})
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// drain executes a command tree and returns the produced messages. Batch
// commands are flattened; nil commands are skipped.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ---------------------------------------------------------------------------
// Construction and layout
// ---------------------------------------------------------------------------

func TestNewDefaults(t *testing.T) {
	m := newTestModel()

	if m.focus != PaneEditor {
		t.Errorf("initial focus = %v, want editor", m.focus)
	}
	if !m.showExplorer {
		t.Error("explorer should be visible by default")
	}
	if !m.editor.Focused() {
		t.Error("editor should start focused")
	}
}

func TestViewBeforeSize(t *testing.T) {
	m := newTestModel()
	if got := m.View(); got != "" {
		t.Errorf("View before sizing = %q, want empty", got)
	}
}

func TestViewAfterSize(t *testing.T) {
	m := sized(newTestModel())
	view := m.View()
	if view == "" {
		t.Fatal("View is empty after sizing")
	}
	if !strings.Contains(view, "disconnected") {
		t.Error("status bar should report disconnected state")
	}
}

// ---------------------------------------------------------------------------
// Connection flow
// ---------------------------------------------------------------------------

func TestConnectLoadsSchema(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()

	next, cmd := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	if m.conn != adapter.Connection(conn) {
		t.Fatal("connection not stored")
	}

	msgs := drain(t, cmd)
	loaded, ok := findMsg[SchemaLoadedMsg](msgs)
	if !ok {
		t.Fatal("expected SchemaLoadedMsg from connect")
	}
	if len(loaded.Tables) != 2 || loaded.Current != "app" {
		t.Errorf("schema = %d tables, current %q", len(loaded.Tables), loaded.Current)
	}
}

func TestConnectReplacesOldConnection(t *testing.T) {
	m := sized(newTestModel())
	old := newMockConn()

	next, _ := m.Update(ConnectMsg{Conn: old, Engine: "mock", DSN: "a"})
	m = next.(Model)
	next, _ = m.Update(ConnectMsg{Conn: newMockConn(), Engine: "mock", DSN: "b"})
	m = next.(Model)

	if !old.closed {
		t.Error("old connection should be closed on reconnect")
	}
}

func TestConnectErrSetsStatus(t *testing.T) {
	m := sized(newTestModel())
	next, _ := m.Update(ConnectErrMsg{Err: errors.New("refused")})
	m = next.(Model)

	if !strings.Contains(m.View(), "refused") {
		t.Error("connection error should surface in the status bar")
	}
}

func TestSchemaLoadedFillsCatalog(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	next, _ = m.Update(SchemaLoadedMsg{
		Databases: conn.databases,
		Tables:    conn.tables,
		Current:   "app",
	})
	m = next.(Model)

	tables, err := m.catalog.Tables()
	if err != nil {
		t.Fatalf("catalog.Tables: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("catalog has %d tables, want 2", len(tables))
	}
}

func TestColumnsLoadedFillsCatalog(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	next, _ = m.Update(ColumnsLoadedMsg{
		Table:   "users",
		Columns: conn.columns["users"],
	})
	m = next.(Model)

	cols := m.catalog.Columns("users")
	if len(cols) != 3 {
		t.Errorf("catalog has %d columns for users, want 3", len(cols))
	}
	if len(conn.columnsCalls) != 0 {
		t.Error("cached columns should not hit the connection")
	}
}

func TestLoadColumnsMsgFetches(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	_, cmd := m.Update(LoadColumnsMsg{Table: "orders"})
	msgs := drain(t, cmd)

	loaded, ok := findMsg[ColumnsLoadedMsg](msgs)
	if !ok {
		t.Fatal("expected ColumnsLoadedMsg")
	}
	if loaded.Table != "orders" || len(loaded.Columns) != 2 {
		t.Errorf("loaded %q with %d columns", loaded.Table, len(loaded.Columns))
	}
}

func TestUseDatabaseSwitches(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	conn.databases = []string{"app", "analytics"}
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	_, cmd := m.Update(UseDatabaseMsg{Name: "analytics"})
	msgs := drain(t, cmd)

	switched, ok := findMsg[DatabaseSwitchedMsg](msgs)
	if !ok {
		t.Fatal("expected DatabaseSwitchedMsg")
	}
	if switched.Name != "analytics" {
		t.Errorf("switched to %q, want analytics", switched.Name)
	}
	if conn.current != "analytics" {
		t.Errorf("connection database = %q, want analytics", conn.current)
	}
}

func TestDatabaseSwitchedReloadsSchema(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	_, cmd := m.Update(DatabaseSwitchedMsg{Name: "app"})
	msgs := drain(t, cmd)

	if _, ok := findMsg[SchemaLoadedMsg](msgs); !ok {
		t.Error("database switch should trigger a schema reload")
	}
}

// ---------------------------------------------------------------------------
// Query execution
// ---------------------------------------------------------------------------

func TestExecuteQueryNotConnected(t *testing.T) {
	m := sized(newTestModel())
	next, _ := m.Update(ExecuteQueryMsg{Query: "SELECT 1"})
	m = next.(Model)

	if m.running {
		t.Error("query should not start without a connection")
	}
	if !strings.Contains(m.View(), "Not connected") {
		t.Error("status bar should report missing connection")
	}
}

func TestExecuteQuerySuccess(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	next, cmd := m.Update(ExecuteQueryMsg{Query: "SELECT * FROM users"})
	m = next.(Model)

	if !m.running {
		t.Error("model should be running after starting a query")
	}

	msgs := drain(t, cmd)
	started, ok := findMsg[QueryStartedMsg](msgs)
	if !ok {
		t.Fatal("expected QueryStartedMsg")
	}
	result, ok := findMsg[QueryResultMsg](msgs)
	if !ok {
		t.Fatal("expected QueryResultMsg")
	}
	if started.RunID != result.RunID || result.RunID != m.runID {
		t.Errorf("run IDs do not line up: started %d result %d model %d",
			started.RunID, result.RunID, m.runID)
	}

	next, _ = m.Update(result)
	m = next.(Model)
	if m.running {
		t.Error("model should stop running after the result arrives")
	}
}

func TestExecuteQueryError(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	conn.execErr = errors.New("syntax error near FORM")
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	next, cmd := m.Update(ExecuteQueryMsg{Query: "SELECT * FORM users"})
	m = next.(Model)

	msgs := drain(t, cmd)
	errMsg, ok := findMsg[QueryErrMsg](msgs)
	if !ok {
		t.Fatal("expected QueryErrMsg")
	}

	next, _ = m.Update(errMsg)
	m = next.(Model)
	if m.running {
		t.Error("model should stop running after a query error")
	}
	if !strings.Contains(m.View(), "FORM") {
		t.Error("query error should surface in the results pane")
	}
}

func TestStaleQueryResultIgnored(t *testing.T) {
	m := sized(newTestModel())
	conn := newMockConn()
	next, _ := m.Update(ConnectMsg{Conn: conn, Engine: "mock", DSN: "dsn"})
	m = next.(Model)

	next, _ = m.Update(ExecuteQueryMsg{Query: "SELECT 1"})
	m = next.(Model)

	stale := QueryResultMsg{Result: conn.execResult, RunID: m.runID - 1}
	next, _ = m.Update(stale)
	m = next.(Model)

	if !m.running {
		t.Error("a stale result must not clear the running state")
	}
}

// ---------------------------------------------------------------------------
// Key handling and focus
// ---------------------------------------------------------------------------

func TestToggleExplorer(t *testing.T) {
	m := sized(newTestModel())

	next, _ := m.Update(keyPress("ctrl+b"))
	m = next.(Model)
	if m.showExplorer {
		t.Error("ctrl+b should hide the explorer")
	}

	next, _ = m.Update(keyPress("ctrl+b"))
	m = next.(Model)
	if !m.showExplorer {
		t.Error("ctrl+b should show the explorer again")
	}
}

func TestToggleExplorerMovesFocus(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneExplorer)

	next, _ := m.Update(keyPress("ctrl+b"))
	m = next.(Model)
	if m.focus != PaneEditor {
		t.Error("hiding a focused explorer should refocus the editor")
	}
}

func TestFocusCycle(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneResults)

	next, _ := m.Update(keyPress("tab"))
	m = next.(Model)
	if m.focus != PaneExplorer {
		t.Errorf("focus after tab = %v, want explorer", m.focus)
	}

	next, _ = m.Update(keyPress("shift+tab"))
	m = next.(Model)
	if m.focus != PaneResults {
		t.Errorf("focus after shift+tab = %v, want results", m.focus)
	}
}

func TestTabStaysInEditor(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneEditor)

	next, _ := m.Update(keyPress("tab"))
	m = next.(Model)
	if m.focus != PaneEditor {
		t.Error("tab inside the editor must not change focus")
	}
}

func TestExecuteKeyEmitsQuery(t *testing.T) {
	m := sized(newTestModel())
	m.editor.SetValue("SELECT 1;")

	_, cmd := m.Update(keyPress("ctrl+e"))
	msgs := drain(t, cmd)

	exec, ok := findMsg[ExecuteQueryMsg](msgs)
	if !ok {
		t.Fatal("ctrl+e should emit ExecuteQueryMsg")
	}
	if exec.Query != "SELECT 1;" {
		t.Errorf("query = %q", exec.Query)
	}
}

func TestExecuteKeyEmptyEditor(t *testing.T) {
	m := sized(newTestModel())
	_, cmd := m.Update(keyPress("ctrl+e"))
	if cmd != nil {
		t.Error("empty editor should not execute anything")
	}
}

func TestQuitUnmodified(t *testing.T) {
	m := sized(newTestModel())
	_, cmd := m.Update(keyPress("ctrl+q"))
	if cmd == nil {
		t.Fatal("ctrl+q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestQuitModifiedShowsDialog(t *testing.T) {
	m := sized(newTestModel())
	next, _ := m.Update(keyPress("x"))
	m = next.(Model)

	next, cmd := m.Update(keyPress("ctrl+q"))
	m = next.(Model)
	if cmd != nil {
		t.Error("quit with pending changes should not quit immediately")
	}
	if !m.quitDialog.Visible() {
		t.Error("quit dialog should be visible")
	}

	// Confirming the dialog quits.
	next, cmd = m.Update(keyPress("enter"))
	m = next.(Model)
	msgs := drain(t, cmd)
	if _, ok := findMsg[quitConfirmedMsg](msgs); !ok {
		t.Fatal("expected quit confirmation")
	}
	_, cmd = m.Update(quitConfirmedMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("confirmed quit should produce tea.QuitMsg")
	}
}

func TestInsertTextFocusesEditor(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneExplorer)

	next, _ := m.Update(InsertTextMsg{Text: "users"})
	m = next.(Model)

	if m.focus != PaneEditor {
		t.Error("inserting text should focus the editor")
	}
	if m.editor.Value() != "users" {
		t.Errorf("editor value = %q", m.editor.Value())
	}
}

// ---------------------------------------------------------------------------
// Completion popup
// ---------------------------------------------------------------------------

func TestTypingShowsSuggestions(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneEditor)

	for _, r := range "SEL" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}

	if !m.suggestions.Visible() {
		t.Fatal("typing a keyword prefix should open the popup")
	}
	found := false
	for _, c := range m.suggestions.Candidates() {
		if c == "SELECT" {
			found = true
		}
	}
	if !found {
		t.Errorf("candidates %v should include SELECT", m.suggestions.Candidates())
	}
}

func TestSuggestionsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Suggest.Enabled = false
	m := sized(New(Options{Config: cfg}))
	m.setFocus(PaneEditor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'S'}})
	m = next.(Model)

	if m.suggestions.Visible() {
		t.Error("popup should stay hidden when completion is disabled")
	}
}

func TestEscapeDismissesSuggestions(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneEditor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'S'}})
	m = next.(Model)
	if !m.suggestions.Visible() {
		t.Fatal("popup should be open")
	}

	next, _ = m.Update(keyPress("esc"))
	m = next.(Model)
	if m.suggestions.Visible() {
		t.Error("esc should dismiss the popup")
	}
}

func TestAcceptedSuggestionInserted(t *testing.T) {
	m := sized(newTestModel())
	m.setFocus(PaneEditor)
	m.editor.SetValue("SEL")

	next, _ := m.Update(suggestbox.AcceptedMsg{Text: "ECT"})
	m = next.(Model)

	if got := m.editor.Value(); got != "SELECT" {
		t.Errorf("editor value = %q, want SELECT", got)
	}
}

// ---------------------------------------------------------------------------
// Overlay helpers
// ---------------------------------------------------------------------------

func TestOverlayAt(t *testing.T) {
	bg := "aaaaaaaa\nbbbbbbbb\ncccccccc"
	got := overlayAt(bg, "XX", 2, 1)
	want := "aaaaaaaa\nbbXXbbbb\ncccccccc"
	if got != want {
		t.Errorf("overlayAt = %q, want %q", got, want)
	}
}

func TestOverlayAtPastEnd(t *testing.T) {
	bg := "ab\ncd"
	got := overlayAt(bg, "XX", 5, 0)
	want := "ab   XX\ncd"
	if got != want {
		t.Errorf("overlayAt = %q, want %q", got, want)
	}
}

func TestOverlayAtBelowBottom(t *testing.T) {
	bg := "ab"
	if got := overlayAt(bg, "XX", 0, 5); got != "ab" {
		t.Errorf("overlayAt = %q, want background unchanged", got)
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[31mred\x1b[0m text"
	if got := stripANSI(in); got != "red text" {
		t.Errorf("stripANSI = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Resize
// ---------------------------------------------------------------------------

func TestResizeExplorerClamped(t *testing.T) {
	m := sized(newTestModel())

	for i := 0; i < 50; i++ {
		m.resizeExplorer(2)
	}
	if m.explorerWidth != maxExplorerWidth {
		t.Errorf("explorer width = %d, want clamp at %d", m.explorerWidth, maxExplorerWidth)
	}

	for i := 0; i < 50; i++ {
		m.resizeExplorer(-2)
	}
	if m.explorerWidth != minExplorerWidth {
		t.Errorf("explorer width = %d, want clamp at %d", m.explorerWidth, minExplorerWidth)
	}
}

func TestResizeEditorClamped(t *testing.T) {
	m := sized(newTestModel())

	for i := 0; i < 50; i++ {
		m.resizeEditor(5)
	}
	if m.editorPct != maxEditorPct {
		t.Errorf("editor pct = %d, want clamp at %d", m.editorPct, maxEditorPct)
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func TestCatalogNotConnected(t *testing.T) {
	c := newConnCatalog()
	if _, err := c.Tables(); !errors.Is(err, adapter.ErrNotConnected) {
		t.Errorf("Tables error = %v, want ErrNotConnected", err)
	}
	if cols := c.Columns("users"); cols != nil {
		t.Errorf("Columns = %v, want nil", cols)
	}
}

func TestCatalogColumnsFallback(t *testing.T) {
	c := newConnCatalog()
	conn := newMockConn()
	c.setConnection(conn)

	cols := c.Columns("users")
	if len(cols) != 3 {
		t.Fatalf("Columns returned %d names, want 3", len(cols))
	}
	if len(conn.columnsCalls) != 1 {
		t.Fatalf("expected one fetch, got %d", len(conn.columnsCalls))
	}

	// Second lookup hits the cache.
	c.Columns("users")
	if len(conn.columnsCalls) != 1 {
		t.Error("second lookup should not refetch")
	}
}

func TestCatalogColumnsUnknownTable(t *testing.T) {
	c := newConnCatalog()
	c.setConnection(newMockConn())
	if cols := c.Columns("missing"); len(cols) != 0 {
		t.Errorf("Columns(missing) = %v, want empty", cols)
	}
}

func TestCatalogResetOnReconnect(t *testing.T) {
	c := newConnCatalog()
	conn := newMockConn()
	c.setConnection(conn)
	c.setTables(conn.tables)

	c.setConnection(newMockConn())
	tables, err := c.Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("reconnect should clear cached tables, got %v", tables)
	}
}

// ---------------------------------------------------------------------------
// Keymap
// ---------------------------------------------------------------------------

func TestKeyMapHelp(t *testing.T) {
	k := DefaultKeyMap()
	if len(k.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(k.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
