package editor

import (
	"testing"

	"github.com/dbshell/dbshell/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

// ---------------------------------------------------------------------------
// Buffer contents
// ---------------------------------------------------------------------------

func TestNewIsEmptyAndBlurred(t *testing.T) {
	m := New()
	if m.Value() != "" {
		t.Errorf("Value() = %q, want empty", m.Value())
	}
	if m.Modified() || m.Focused() {
		t.Errorf("new editor should be unmodified and blurred, got dirty=%v focused=%v",
			m.Modified(), m.Focused())
	}
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"single line", []string{"SELECT * FROM users"}, "SELECT * FROM users"},
		{"multi line", []string{"SELECT *\nFROM users\nWHERE id > 5"}, "SELECT *\nFROM users\nWHERE id > 5"},
		{"overwrite", []string{"first value", "second value"}, "second value"},
		{"clear", []string{"something", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for _, v := range tt.values {
				m.SetValue(v)
			}
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Cursor position
// ---------------------------------------------------------------------------

// SetValue leaves the cursor at the end of the buffer.
func TestCursorPosition(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		line   int
		column int
	}{
		{"empty buffer", "", 0, 0},
		{"single line", "SELECT", 0, 6},
		{"second line", "SELECT *\nFROM us", 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			if tt.value != "" {
				m.SetValue(tt.value)
			}
			pos := m.CursorPosition()
			if pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("CursorPosition() = %+v, want {%d %d}", pos, tt.line, tt.column)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Modified flag
// ---------------------------------------------------------------------------

func TestModifiedFlag(t *testing.T) {
	m := New()

	m.ResetModified()
	if m.Modified() {
		t.Error("ResetModified on a clean editor should keep it clean")
	}

	m.InsertText("test")
	if !m.Modified() {
		t.Fatal("InsertText should mark the buffer modified")
	}

	m.ResetModified()
	if m.Modified() {
		t.Error("ResetModified should clear the flag")
	}
}

// ---------------------------------------------------------------------------
// Focus
// ---------------------------------------------------------------------------

func TestFocusBlur(t *testing.T) {
	m := New()

	m.Focus()
	if !m.Focused() {
		t.Error("Focus() should focus the editor")
	}
	m.Focus()
	if !m.Focused() {
		t.Error("repeated Focus() should stay focused")
	}

	m.Blur()
	if m.Focused() {
		t.Error("Blur() should remove focus")
	}
	m.Blur()
	if m.Focused() {
		t.Error("repeated Blur() should stay blurred")
	}
}

func TestUpdateIgnoredWhileBlurred(t *testing.T) {
	m := New()
	if _, cmd := m.Update(nil); cmd != nil {
		t.Error("blurred editor should not produce commands")
	}
}

func TestInitBlinks(t *testing.T) {
	if New().Init() == nil {
		t.Error("Init() should return the cursor blink command")
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestViewRenders(t *testing.T) {
	cases := []struct {
		name      string
		setup     func(m *Model)
		wantEmpty bool
	}{
		{"blurred placeholder", func(m *Model) { m.SetSize(80, 24) }, false},
		{"focused", func(m *Model) { m.SetSize(80, 24); m.Focus() }, false},
		{"with content", func(m *Model) { m.SetSize(80, 24); m.SetValue("SELECT * FROM users") }, false},
		{"zero size", func(m *Model) {}, false},
		{"tiny size", func(m *Model) { m.SetSize(2, 2) }, false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			tt.setup(&m)
			if got := m.View(); (got == "") != tt.wantEmpty {
				t.Errorf("View() empty = %v, want %v", got == "", tt.wantEmpty)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// InsertText
// ---------------------------------------------------------------------------

func TestInsertText(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		insert  string
		want    string
	}{
		{"empty buffer", "", "users", "users"},
		{"appends at cursor", "SELECT * FROM ", "users", "SELECT * FROM users"},
		{"completion suffix", "SELECT * FROM us", "ers", "SELECT * FROM users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			if tt.initial != "" {
				m.SetValue(tt.initial)
			}
			m.InsertText(tt.insert)
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
			if !m.Modified() {
				t.Error("InsertText should mark the buffer modified")
			}
		})
	}
}
