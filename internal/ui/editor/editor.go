package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dbshell/dbshell/internal/suggest"
	"github.com/dbshell/dbshell/internal/theme"
)

// Model wraps a textarea with SQL-aware rendering. While focused the
// textarea does the editing work. Blurred, the buffer is shown read-only
// with syntax colors and a line number gutter.
type Model struct {
	area        textarea.Model
	highlighter *Highlighter
	width       int
	height      int
	focused     bool
	dirty       bool
}

// New creates a blurred, empty editor.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Enter SQL query..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	th := theme.Current
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = th.EditorLineNumber
	ta.FocusedStyle.Text = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = th.EditorLineNumber
	ta.BlurredStyle.Text = lipgloss.NewStyle()
	ta.Blur()

	return Model{area: ta, highlighter: NewHighlighter()}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update forwards input to the textarea while focused and tracks whether
// the buffer changed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	before := m.area.Value()
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if m.area.Value() != before {
		m.dirty = true
	}
	return m, cmd
}

// inner returns the drawable area once the border is subtracted, clamped
// to at least one cell.
func (m Model) inner() (w, h int) {
	return max(m.width-2, 1), max(m.height-2, 1)
}

// View draws the editor inside a border that signals focus. The focused
// state shows the live textarea; blurred shows the highlighted preview.
func (m Model) View() string {
	th := theme.Current
	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}

	w, h := m.inner()

	var body string
	if m.focused {
		m.area.SetWidth(w)
		m.area.SetHeight(h)
		body = m.area.View()
	} else {
		body = m.preview(th, h)
	}

	return border.Width(w).Height(h).Render(body)
}

// preview renders the blurred view: each line syntax-highlighted and
// prefixed with its number, truncated to the visible height.
func (m Model) preview(th *theme.Theme, height int) string {
	raw := m.area.Value()
	if raw == "" {
		return th.MutedText.Render(m.area.Placeholder)
	}

	lines := strings.Split(m.highlighter.Highlight(raw, th), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}

	// Gutter wide enough for the last line number, two digits minimum.
	gutter := max(len(fmt.Sprintf("%d", strings.Count(raw, "\n")+1)), 2)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(th.EditorLineNumber.Render(fmt.Sprintf("%*d ", gutter, i+1)))
		b.WriteString(line)
	}
	return b.String()
}

// Value returns the buffer contents.
func (m Model) Value() string {
	return m.area.Value()
}

// SetValue replaces the buffer, leaving the cursor at the end.
func (m *Model) SetValue(s string) {
	m.area.SetValue(s)
}

// CursorPosition reports the zero-based cursor line and column, the form
// the completion provider works in.
func (m Model) CursorPosition() suggest.Position {
	return suggest.Position{
		Line:   m.area.Line(),
		Column: m.area.LineInfo().ColumnOffset,
	}
}

// SetSize sets the outer dimensions, border included.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	iw, ih := m.inner()
	m.area.SetWidth(iw)
	m.area.SetHeight(ih)
}

// Focus gives the editor input focus.
func (m *Model) Focus() {
	m.focused = true
	m.area.Focus()
}

// Blur takes input focus away.
func (m *Model) Blur() {
	m.focused = false
	m.area.Blur()
}

// Focused reports whether the editor has input focus.
func (m Model) Focused() bool {
	return m.focused
}

// Modified reports whether the buffer changed since ResetModified.
func (m Model) Modified() bool {
	return m.dirty
}

// ResetModified clears the change flag, usually right after an execute.
func (m *Model) ResetModified() {
	m.dirty = false
}

// InsertText inserts at the cursor, used by accepted completions and by
// table names picked from the explorer.
func (m *Model) InsertText(text string) {
	m.area.InsertString(text)
	m.dirty = true
}
