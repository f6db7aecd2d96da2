// Package historybrowser implements the searchable query history modal.
package historybrowser

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dbshell/dbshell/internal/history"
	"github.com/dbshell/dbshell/internal/theme"
)

// fetchLimit caps how many entries a single load pulls from the store.
const fetchLimit = 200

// SelectQueryMsg is sent when the user picks a history entry.
type SelectQueryMsg struct {
	Query string
}

// Model is the history browser modal. The entry list is a window over the
// most recent entries, re-queried whenever the search text changes.
type Model struct {
	hist    *history.History
	entries []history.Entry
	cursor  int
	top     int // index of the first entry on screen
	visible bool
	width   int
	height  int
	search  textinput.Model
}

// New creates a history browser backed by hist. A nil hist yields an empty
// browser that still renders and handles keys.
func New(hist *history.History) Model {
	in := textinput.New()
	in.Placeholder = "Search queries..."
	in.Prompt = "  > "
	in.Width = 50
	return Model{hist: hist, search: in}
}

// Show opens the browser with a cleared search and freshly loaded entries.
func (m *Model) Show() {
	m.visible = true
	m.cursor = 0
	m.top = 0
	m.search.SetValue("")
	m.search.Focus()
	m.reload()
}

// Hide closes the browser.
func (m *Model) Hide() {
	m.visible = false
	m.search.Blur()
}

// Visible reports whether the browser is open.
func (m Model) Visible() bool { return m.visible }

// SetSize sets the available terminal space.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles input while the browser is open. Unrecognised keys go to
// the search field.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		// Cursor blink and similar ticks belong to the search field.
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "esc", "ctrl+h":
		m.Hide()
		return m, nil
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil
	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil
	case "pgup":
		m.moveCursor(-m.pageSize())
		return m, nil
	case "pgdown":
		m.moveCursor(m.pageSize())
		return m, nil
	case "enter":
		return m.selectCurrent()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(key)
	if m.search.Value() != before {
		m.cursor = 0
		m.top = 0
		m.reload()
	}
	return m, cmd
}

// selectCurrent closes the browser and emits the highlighted query.
func (m Model) selectCurrent() (Model, tea.Cmd) {
	if m.cursor >= len(m.entries) {
		return m, nil
	}
	query := m.entries[m.cursor].Query
	m.Hide()
	return m, func() tea.Msg { return SelectQueryMsg{Query: query} }
}

// moveCursor shifts the selection by delta, clamping to the list and
// scrolling the window so the cursor stays on screen.
func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	page := m.pageSize()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+page {
		m.top = m.cursor - page + 1
	}
}

// View renders the modal box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current
	w := m.boxWidth()

	sections := []string{
		th.DialogTitle.Render("  Query History  "),
		"  " + m.search.View(),
		"",
		strings.Join(m.entryLines(th, w-6), "\n"),
		"",
		th.MutedText.Render(fmt.Sprintf("  %d entries", len(m.entries))),
		th.MutedText.Render("  enter:select  esc:close  up/down:navigate"),
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return th.DialogBorder.Width(w).Render(body)
}

// entryLines renders the visible window of the entry list.
func (m Model) entryLines(th *theme.Theme, width int) []string {
	if len(m.entries) == 0 {
		return []string{th.MutedText.Render("  No history entries")}
	}

	end := m.top + m.pageSize()
	if end > len(m.entries) {
		end = len(m.entries)
	}

	lines := make([]string, 0, end-m.top)
	for i := m.top; i < end; i++ {
		e := m.entries[i]
		line := m.formatEntry(e, width)
		switch {
		case i == m.cursor:
			lines = append(lines, th.ExplorerSelected.Render(line))
		case e.IsError:
			lines = append(lines, th.ErrorText.Render("  "+line))
		default:
			lines = append(lines, "  "+line)
		}
	}
	return lines
}

func (m Model) boxWidth() int {
	w := 80
	if m.width > 0 && w > m.width-4 {
		w = m.width - 4
	}
	return w
}

// pageSize is the number of entry rows that fit between the chrome lines.
// Title, search, two separators, count and help take six rows, the border
// two more.
func (m Model) pageSize() int {
	n := m.height - 8
	if n < 3 {
		n = 3
	}
	return n
}

// reload re-queries the store for the current search text.
func (m *Model) reload() {
	if m.hist == nil {
		m.entries = nil
		return
	}

	var (
		entries []history.Entry
		err     error
	)
	if text := m.search.Value(); text != "" {
		entries, err = m.hist.Search("%"+text+"%", fetchLimit)
	} else {
		entries, err = m.hist.Recent(fetchLimit)
	}
	if err != nil {
		entries = nil
	}
	m.entries = entries
}

// formatEntry lays out one row: the query summary left-aligned, then the
// engine, duration and age.
func (m Model) formatEntry(e history.Entry, maxWidth int) string {
	queryWidth := maxWidth - 30
	if queryWidth < 10 {
		queryWidth = 10
	}
	query := summarize(e.Query, queryWidth)

	meta := make([]string, 0, 3)
	if e.Engine != "" {
		meta = append(meta, e.Engine)
	}
	if e.DurationMS > 0 {
		meta = append(meta, formatDuration(e.DurationMS))
	}
	meta = append(meta, RelativeTime(e.ExecutedAt))

	return fmt.Sprintf("%-*s  %s", queryWidth, query, strings.Join(meta, " | "))
}

// summarize collapses a query to its first line and truncates it to max
// bytes, appending "..." when it was cut.
func summarize(query string, max int) string {
	query = strings.TrimSpace(query)
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		query = strings.TrimSpace(query[:i])
	}
	if len(query) > max {
		query = query[:max-3] + "..."
	}
	return query
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

// RelativeTime formats a timestamp as a coarse age like "5m ago".
func RelativeTime(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 48*time.Hour:
		return "yesterday"
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
