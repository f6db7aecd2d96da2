package statusbar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dbshell/dbshell/internal/adapter"
	appmsg "github.com/dbshell/dbshell/internal/msg"
	"github.com/dbshell/dbshell/internal/schema"
	"github.com/dbshell/dbshell/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

// fakeConn satisfies adapter.Connection with canned identity values.
type fakeConn struct {
	db      string
	adapter string
}

func (c *fakeConn) DatabaseName() string                            { return c.db }
func (c *fakeConn) AdapterName() string                             { return c.adapter }
func (c *fakeConn) Databases(context.Context) ([]string, error)     { return nil, nil }
func (c *fakeConn) UseDatabase(context.Context, string) error       { return nil }
func (c *fakeConn) Tables(context.Context) ([]schema.Table, error)  { return nil, nil }
func (c *fakeConn) Ping(context.Context) error                      { return nil }
func (c *fakeConn) Close() error                                    { return nil }
func (c *fakeConn) Columns(context.Context, string) ([]schema.Column, error) {
	return nil, nil
}
func (c *fakeConn) Execute(context.Context, string) (*adapter.QueryResult, error) {
	return nil, nil
}

func connect(m Model, engine, db string) Model {
	m, _ = m.Update(appmsg.ConnectMsg{
		Conn:   &fakeConn{db: db, adapter: engine},
		Engine: engine,
	})
	return m
}

// ---------------------------------------------------------------------------
// Connection state
// ---------------------------------------------------------------------------

func TestNewIsIdle(t *testing.T) {
	m := New()
	if m.rows != -1 {
		t.Errorf("rows = %d, want -1 for no count", m.rows)
	}
	if m.connected || m.note != "" {
		t.Errorf("new bar should be disconnected with no note, got %+v", m)
	}
	if m.Init() != nil {
		t.Error("Init() should return no command")
	}
}

func TestConnect(t *testing.T) {
	m := connect(New(), "postgres", "testdb")

	if !m.connected || m.engine != "postgres" || m.database != "testdb" {
		t.Errorf("after connect: %+v", m)
	}
	if m.note != "" || m.noteIsErr {
		t.Errorf("connect should clear any note, got %q err=%v", m.note, m.noteIsErr)
	}
}

func TestDisconnect(t *testing.T) {
	m := connect(New(), "sqlite", "test.db")
	m, _ = m.Update(appmsg.DisconnectMsg{})

	if m.connected || m.engine != "" || m.database != "" {
		t.Errorf("after disconnect: %+v", m)
	}
}

func TestDatabaseSwitch(t *testing.T) {
	m := connect(New(), "mysql", "app")
	m, _ = m.Update(appmsg.DatabaseSwitchedMsg{Name: "analytics"})

	if m.database != "analytics" {
		t.Errorf("database = %q, want analytics", m.database)
	}
}

// ---------------------------------------------------------------------------
// Query outcomes
// ---------------------------------------------------------------------------

func TestQueryResult(t *testing.T) {
	m := New()
	m, cmd := m.Update(appmsg.QueryResultMsg{Result: &adapter.QueryResult{
		Duration: 150 * time.Millisecond,
		RowCount: 42,
		Message:  "42 rows affected",
	}})

	if m.elapsed != 150*time.Millisecond || m.rows != 42 {
		t.Errorf("elapsed=%v rows=%d", m.elapsed, m.rows)
	}
	if m.note != "42 rows affected" || m.noteIsErr {
		t.Errorf("note=%q err=%v", m.note, m.noteIsErr)
	}
	if cmd == nil {
		t.Error("a query result should arm the clear timer")
	}
}

func TestQueryResultNil(t *testing.T) {
	m := New()
	m, _ = m.Update(appmsg.QueryResultMsg{})
	if m.rows != -1 {
		t.Errorf("nil result should leave rows at -1, got %d", m.rows)
	}
}

func TestQueryResultWithoutMessage(t *testing.T) {
	m := New()
	m, _ = m.Update(appmsg.QueryResultMsg{Result: &adapter.QueryResult{
		Duration: 5 * time.Second,
		RowCount: 1000,
	}})

	if m.elapsed != 5*time.Second || m.rows != 1000 {
		t.Errorf("elapsed=%v rows=%d", m.elapsed, m.rows)
	}
	if m.note != "" {
		t.Errorf("note should stay empty, got %q", m.note)
	}
}

func TestQueryError(t *testing.T) {
	m := New()
	m, _ = m.Update(appmsg.QueryErrMsg{Err: errors.New("syntax error near 'SELEC'")})

	if m.note != "syntax error near 'SELEC'" || !m.noteIsErr {
		t.Errorf("note=%q err=%v", m.note, m.noteIsErr)
	}
}

func TestStatusMsg(t *testing.T) {
	tests := []struct {
		name    string
		msg     appmsg.StatusMsg
		wantErr bool
	}{
		{"info", appmsg.StatusMsg{Text: "Export complete", Duration: 200 * time.Millisecond}, false},
		{"error", appmsg.StatusMsg{Text: "Connection failed", IsError: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m, _ = m.Update(tt.msg)
			if m.note != tt.msg.Text || m.noteIsErr != tt.wantErr {
				t.Errorf("note=%q err=%v", m.note, m.noteIsErr)
			}
			if tt.msg.Duration > 0 && m.elapsed != tt.msg.Duration {
				t.Errorf("elapsed = %v, want %v", m.elapsed, tt.msg.Duration)
			}
		})
	}
}

func TestStatusMsgKeepsElapsedWhenZero(t *testing.T) {
	m := New()
	m.elapsed = 100 * time.Millisecond
	m, _ = m.Update(appmsg.StatusMsg{Text: "Info message"})

	if m.elapsed != 100*time.Millisecond {
		t.Errorf("elapsed = %v, zero-duration status should not touch it", m.elapsed)
	}
}

func TestStaleClearIgnored(t *testing.T) {
	m := New()

	m, _ = m.Update(appmsg.StatusMsg{Text: "first"})
	stale := m.gen
	m, _ = m.Update(appmsg.StatusMsg{Text: "second"})
	fresh := m.gen

	if stale == fresh {
		t.Fatalf("each status should get its own generation, both %d", stale)
	}

	m, _ = m.Update(ClearStatusMsg{Gen: stale})
	if m.note != "second" {
		t.Fatalf("stale timer cleared the newer note, got %q", m.note)
	}

	m, _ = m.Update(ClearStatusMsg{Gen: fresh})
	if m.note != "" || m.rows != -1 || m.elapsed != 0 {
		t.Errorf("fresh clear should reset the bar: %+v", m)
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestViewZeroWidth(t *testing.T) {
	if got := New().View(); got != "" {
		t.Errorf("View() with no width = %q, want empty", got)
	}
}

func TestViewStates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m Model) Model
	}{
		{"idle hints", func(m Model) Model { return m }},
		{"connected", func(m Model) Model { return connect(m, "postgres", "mydb") }},
		{"query timing", func(m Model) Model {
			m, _ = m.Update(appmsg.QueryResultMsg{Result: &adapter.QueryResult{
				Duration: 42 * time.Millisecond,
				RowCount: 100,
			}})
			return m
		}},
		{"error note", func(m Model) Model {
			m, _ = m.Update(appmsg.QueryErrMsg{Err: errors.New("test error")})
			return m
		}},
		{"cursor position", func(m Model) Model { m.SetCursor(5, 10); return m }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetSize(120)
			m = tt.setup(m)
			if m.View() == "" {
				t.Error("View() returned an empty string")
			}
		})
	}
}

func TestSetCursor(t *testing.T) {
	m := New()
	m.SetCursor(10, 25)
	if m.curLine != 10 || m.curCol != 25 {
		t.Errorf("cursor = %d:%d, want 10:25", m.curLine, m.curCol)
	}
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5k"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.n); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{150 * time.Millisecond, "150ms"},
		{2500 * time.Millisecond, "2.5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 20, "short"},
		{"a long error message", 10, "a long ..."},
		{"untouched when tiny budget", 3, "untouched when tiny budget"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}
