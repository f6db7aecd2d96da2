// Package statusbar renders the one-line bar at the bottom of the screen.
// Connection info sits on the left, query status or key hints in the
// middle, and the cursor position on the right.
package statusbar

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmsg "github.com/dbshell/dbshell/internal/msg"
	"github.com/dbshell/dbshell/internal/theme"
)

// Status messages stay visible this long before the bar reverts to hints.
const messageTTL = 5 * time.Second

// ClearStatusMsg reverts the bar to idle. Gen ties the timer to the
// message it was armed for so a stale timer cannot wipe a newer one.
type ClearStatusMsg struct {
	Gen uint64
}

// Model is the status bar component.
type Model struct {
	width     int
	engine    string
	database  string
	elapsed   time.Duration
	rows      int64
	note      string
	noteIsErr bool
	curLine   int
	curCol    int
	connected bool
	gen       uint64
}

// New returns an idle, disconnected bar. A row count of -1 means no count
// is available to show.
func New() Model {
	return Model{rows: -1}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// armClear bumps the generation and schedules the matching clear tick.
func (m *Model) armClear() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(messageTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Gen: gen}
	})
}

// Update tracks connection state and query outcomes.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmsg.ConnectMsg:
		m.engine = msg.Engine
		m.database = msg.Conn.DatabaseName()
		m.connected = true
		m.note = ""
		m.noteIsErr = false

	case appmsg.DisconnectMsg:
		m.connected = false
		m.engine = ""
		m.database = ""

	case appmsg.DatabaseSwitchedMsg:
		m.database = msg.Name

	case appmsg.QueryResultMsg:
		if msg.Result != nil {
			m.elapsed = msg.Result.Duration
			m.rows = msg.Result.RowCount
			if msg.Result.Message != "" {
				m.note = msg.Result.Message
				m.noteIsErr = false
			}
		}
		return m, m.armClear()

	case appmsg.QueryErrMsg:
		m.note = "unknown error"
		if msg.Err != nil {
			m.note = msg.Err.Error()
		}
		m.noteIsErr = true
		return m, m.armClear()

	case appmsg.StatusMsg:
		m.note = msg.Text
		m.noteIsErr = msg.IsError
		if msg.Duration > 0 {
			m.elapsed = msg.Duration
		}
		return m, m.armClear()

	case ClearStatusMsg:
		if msg.Gen == m.gen {
			m.elapsed = 0
			m.rows = -1
			m.note = ""
			m.noteIsErr = false
		}
	}

	return m, nil
}

// View lays the three sections out with the leftover width split between
// the gaps.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	th := theme.Current
	left := m.leftSection(th)
	center := m.centerSection(th)
	right := m.rightSection(th)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(center)-lipgloss.Width(right), 0)
	pre := gap / 2
	post := gap - pre

	bar := left +
		th.StatusBar.Render(strings.Repeat(" ", pre)) +
		center +
		th.StatusBar.Render(strings.Repeat(" ", post)) +
		right

	return th.StatusBar.Width(m.width).Render(bar)
}

func (m Model) leftSection(th *theme.Theme) string {
	if !m.connected {
		return th.StatusBarKey.Render(" disconnected ")
	}
	return th.StatusBarKey.Render(fmt.Sprintf(" %s://%s ", m.engine, m.database))
}

func (m Model) centerSection(th *theme.Theme) string {
	switch {
	case m.note != "" && m.noteIsErr:
		return th.StatusBarError.Render(" " + truncate(m.note, m.width/2) + " ")

	case m.note != "":
		return th.StatusBarSuccess.Render(" " + m.note + " ")

	case m.elapsed > 0:
		s := th.StatusBarValue.Render(" " + formatDuration(m.elapsed) + " ")
		if m.rows >= 0 {
			s += th.StatusBarValue.Render(fmt.Sprintf(" %s rows ", formatCount(m.rows)))
		}
		return s
	}

	key, sep := th.StatusBarValue, th.StatusBar
	return key.Render("Ctrl+E") + sep.Render(" Run ") +
		key.Render("Tab") + sep.Render(" Switch pane ") +
		key.Render("Ctrl+Q") + sep.Render(" Quit ")
}

func (m Model) rightSection(th *theme.Theme) string {
	if m.curLine == 0 {
		return ""
	}
	return th.StatusBarValue.Render(fmt.Sprintf(" %d:%d ", m.curLine, m.curCol))
}

// SetSize sets the bar width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// SetCursor updates the cursor indicator. Line and column are one-based;
// a zero line hides it.
func (m *Model) SetCursor(line, col int) {
	m.curLine = line
	m.curCol = col
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatCount(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
