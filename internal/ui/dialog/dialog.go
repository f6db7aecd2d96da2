// Package dialog implements a small centered modal with a row of buttons,
// used for confirmations such as quitting with unexecuted edits.
package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dbshell/dbshell/internal/theme"
)

// Button is one choice in the dialog. A nil Action simply closes the dialog.
type Button struct {
	Label  string
	Action func() tea.Msg
}

// Model is the dialog component.
type Model struct {
	title    string
	body     string
	buttons  []Button
	focus    int
	visible  bool
	winW     int
	winH     int
	boxWidth int
}

// New creates a dialog with the given buttons. The first button starts
// focused whenever the dialog is shown.
func New(title, body string, buttons ...Button) Model {
	return Model{
		title:    title,
		body:     body,
		buttons:  buttons,
		boxWidth: 60,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update moves button focus and fires the focused button on enter.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h", "shift+tab":
		if m.focus > 0 {
			m.focus--
		}
	case "right", "l", "tab":
		if m.focus < len(m.buttons)-1 {
			m.focus++
		}
	case "enter":
		m.visible = false
		if m.focus < len(m.buttons) && m.buttons[m.focus].Action != nil {
			return m, m.buttons[m.focus].Action
		}
	case "esc":
		m.visible = false
	}
	return m, nil
}

// View renders the dialog box. Empty while hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current
	inner := m.boxWidth - 4

	var row []string
	for i, b := range m.buttons {
		style := th.DialogButton
		if i == m.focus {
			style = th.DialogButtonActive
		}
		row = append(row, style.Render(" "+b.Label+" "))
	}
	buttons := lipgloss.NewStyle().
		Width(inner).
		Align(lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, row...))

	content := lipgloss.JoinVertical(lipgloss.Left,
		th.DialogTitle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(inner).Render(m.body),
		"",
		buttons,
	)
	return th.DialogBorder.Render(content)
}

// Overlay paints the dialog centered over the given background. The
// background passes through untouched while the dialog is hidden.
func (m Model) Overlay(background string) string {
	if !m.visible {
		return background
	}

	box := m.View()
	bgLines := strings.Split(background, "\n")
	boxLines := strings.Split(box, "\n")

	top := (len(bgLines) - len(boxLines)) / 2
	left := (m.winW - lipgloss.Width(box)) / 2
	if top < 0 {
		top = 0
	}
	if left < 0 {
		left = 0
	}

	for i, boxLine := range boxLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], boxLine, left)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of line from column col with overlay, padding
// the line when it is shorter than col.
func splice(line, overlay string, col int) string {
	runes := []rune(line)

	var prefix string
	if col <= len(runes) {
		prefix = string(runes[:col])
	} else {
		prefix = line + strings.Repeat(" ", col-len(runes))
	}

	var suffix string
	if end := col + lipgloss.Width(overlay); end < len(runes) {
		suffix = string(runes[end:])
	}
	return prefix + overlay + suffix
}

// Show opens the dialog with the first button focused.
func (m *Model) Show() {
	m.visible = true
	m.focus = 0
}

// Hide closes the dialog.
func (m *Model) Hide() {
	m.visible = false
}

// Visible reports whether the dialog is open.
func (m Model) Visible() bool {
	return m.visible
}

// SetSize records the window size used for centering and clamps the box
// width to fit.
func (m *Model) SetSize(width, height int) {
	m.winW = width
	m.winH = height
	if m.boxWidth > width-4 {
		m.boxWidth = width - 4
	}
}
