// Package suggestbox renders the completion popup below the editor cursor.
package suggestbox

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/dbshell/dbshell/internal/theme"
)

const maxVisible = 5

// AcceptedMsg is sent when a suggestion is accepted. Text carries only the
// suffix that still needs to be typed.
type AcceptedMsg struct {
	Text string
}

// DismissMsg is sent when the popup is dismissed.
type DismissMsg struct{}

// Model is the suggestion popup overlay.
type Model struct {
	candidates []string
	selected   int
	visible    bool
	prefix     string // word being completed
	maxItems   int
	width      int
}

// New creates a popup that shows at most maxItems candidates at a time.
func New(maxItems int) Model {
	if maxItems <= 0 {
		maxItems = 12
	}
	return Model{
		maxItems: maxItems,
		width:    40,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles popup interactions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.candidates)-1 {
				m.selected++
			}
			return m, nil

		case "enter", "tab":
			if m.selected < len(m.candidates) {
				text := m.candidates[m.selected]
				// Strip the part the user already typed.
				if m.prefix != "" && strings.HasPrefix(strings.ToLower(text), strings.ToLower(m.prefix)) {
					text = text[len(m.prefix):]
				}
				m.visible = false
				return m, func() tea.Msg { return AcceptedMsg{Text: text} }
			}

		case "esc", "ctrl+c":
			m.visible = false
			return m, func() tea.Msg { return DismissMsg{} }
		}
	}

	return m, nil
}

// View renders the popup.
func (m Model) View() string {
	if !m.visible || len(m.candidates) == 0 {
		return ""
	}

	th := theme.Current

	visible := m.candidates
	offset := 0
	if len(visible) > maxVisible {
		if m.selected >= maxVisible {
			offset = m.selected - maxVisible + 1
		}
		end := offset + maxVisible
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[offset:end]
	}

	var lines []string
	for i, label := range visible {
		idx := offset + i
		if len(label) > m.width-2 {
			label = label[:m.width-5] + "..."
		}
		for len(label) < m.width-2 {
			label += " "
		}

		if idx == m.selected {
			lines = append(lines, th.SuggestSelected.Render(label))
		} else {
			lines = append(lines, th.SuggestItem.Render(label))
		}
	}

	content := strings.Join(lines, "\n")
	return th.SuggestBorder.Render(content)
}

// Show fills the popup with candidates for the given prefix. When the prefix
// is non-empty the candidates are re-ranked with fuzzy matching so the best
// match sits at the top; candidates the fuzzy matcher rejects keep their
// original order below the matches. The list is capped at the configured
// maximum.
func (m *Model) Show(candidates []string, prefix string) {
	if len(candidates) == 0 {
		m.visible = false
		m.candidates = nil
		return
	}

	ranked := rank(candidates, prefix)
	if len(ranked) > m.maxItems {
		ranked = ranked[:m.maxItems]
	}

	m.candidates = ranked
	m.prefix = prefix
	m.selected = 0
	m.visible = true
}

// rank orders candidates by fuzzy match quality against prefix. Non-matching
// candidates follow in their original order.
func rank(candidates []string, prefix string) []string {
	if prefix == "" {
		return append([]string(nil), candidates...)
	}

	matches := fuzzy.Find(prefix, candidates)
	if len(matches) == 0 {
		return append([]string(nil), candidates...)
	}

	matched := make(map[int]bool, len(matches))
	out := make([]string, 0, len(candidates))
	for _, mt := range matches {
		matched[mt.Index] = true
		out = append(out, candidates[mt.Index])
	}
	for i, c := range candidates {
		if !matched[i] {
			out = append(out, c)
		}
	}
	return out
}

// Dismiss hides the popup.
func (m *Model) Dismiss() {
	m.visible = false
}

// Visible reports whether the popup is shown.
func (m Model) Visible() bool {
	return m.visible
}

// Candidates returns the currently displayed candidates.
func (m Model) Candidates() []string {
	return m.candidates
}

// Selected returns the index of the highlighted candidate.
func (m Model) Selected() int {
	return m.selected
}
