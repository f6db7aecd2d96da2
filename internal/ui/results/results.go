// Package results provides the table component that displays SQL query
// results, or the status message of a non-SELECT statement.
package results

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dbshell/dbshell/internal/adapter"
	appmsg "github.com/dbshell/dbshell/internal/msg"
	"github.com/dbshell/dbshell/internal/theme"
)

// displayMode is what the pane currently shows.
type displayMode int

const (
	modeIdle displayMode = iota
	modeLoading
	modeError
	modeMessage // non-SELECT statement outcome
	modeGrid    // row data
)

// Model renders query results. The embedded bubbles table supplies cursor
// and key handling; rendering is done here so NULL cells and row selection
// can be styled per theme.
type Model struct {
	table table.Model
	mode  displayMode

	colNames []string
	colDefs  []table.Column
	rows     [][]string

	totalRows int64
	elapsed   time.Duration
	message   string
	err       error

	scrollTop int // first data row on screen
	width     int
	height    int
	focused   bool
}

// New creates an empty results pane.
func New() Model {
	t := table.New(
		table.WithFocused(false),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.Bold(false)
	t.SetStyles(s)

	return Model{table: t, totalRows: -1}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd { return nil }

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(appmsg.QueryResultMsg); ok {
		if res.Result != nil {
			m.SetResults(res.Result)
		}
		return m, nil
	}

	if !m.focused {
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.followCursor()
	}
	return m, cmd
}

// SetResults loads a query outcome into the pane.
func (m *Model) SetResults(result *adapter.QueryResult) {
	m.err = nil
	m.elapsed = result.Duration
	m.totalRows = result.RowCount

	if !result.IsSelect {
		m.mode = modeMessage
		m.message = result.Message
		m.colNames = nil
		m.rows = nil
		m.table.SetRows(nil)
		m.table.SetColumns(nil)
		return
	}

	m.mode = modeGrid
	m.message = ""
	m.colNames = result.Columns
	m.rows = result.Rows
	m.scrollTop = 0
	if m.totalRows < 0 {
		m.totalRows = int64(len(result.Rows))
	}
	m.rebuildGrid()
}

// SetLoading toggles the in-flight indicator.
func (m *Model) SetLoading(loading bool) {
	if loading {
		m.mode = modeLoading
		m.err = nil
	} else if m.mode == modeLoading {
		m.mode = modeIdle
	}
}

// SetError shows err in place of any result.
func (m *Model) SetError(err error) {
	m.mode = modeError
	m.err = err
}

// SetSize updates the pane dimensions and re-fits the columns.
func (m *Model) SetSize(w, h int) {
	if m.width == w && m.height == h {
		return
	}
	m.width = w
	m.height = h

	m.table.SetWidth(max(w-2, 0))
	m.table.SetHeight(max(h-3, 1))

	if len(m.colNames) > 0 {
		m.colDefs = autoSizeColumns(m.colNames, m.rows, m.innerWidth())
		m.table.SetColumns(m.colDefs)
	}
}

// Focus gives the pane keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused reports whether the pane has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// SelectedRow returns the data of the row under the cursor, or nil.
func (m Model) SelectedRow() []string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return nil
	}
	return row
}

// RowCount returns the total number of rows in the result set.
func (m Model) RowCount() int64 { return m.totalRows }

// QueryDuration returns how long the last query took.
func (m Model) QueryDuration() time.Duration { return m.elapsed }

// Columns returns the current column names.
func (m Model) Columns() []string { return m.colNames }

// Rows returns all loaded rows.
func (m Model) Rows() [][]string { return m.rows }

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// View renders the pane for the current display mode.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	th := theme.Current
	bodyHeight := max(m.height-3, 1)

	switch m.mode {
	case modeLoading:
		return m.frame(th.MutedText.Render("  Executing query..."), bodyHeight)
	case modeError:
		return m.frame(th.ErrorText.Render("  Error: "+m.err.Error()), bodyHeight)
	case modeMessage:
		return m.frame(th.SuccessText.Render("  "+m.message), bodyHeight)
	case modeGrid:
		body := lipgloss.JoinVertical(lipgloss.Left, m.grid(th), m.footer(th))
		return m.frame(body, 0)
	}

	hint := th.MutedText.Render("  No results yet. Write a query and press ctrl+e to execute")
	return m.frame(hint, bodyHeight)
}

// grid renders the header, a separator and the visible window of data rows.
func (m Model) grid(th *theme.Theme) string {
	if len(m.colDefs) == 0 {
		return ""
	}

	w := m.innerWidth()
	rowsOnScreen := m.gridHeight()
	cursor := m.table.Cursor()

	var b strings.Builder
	b.WriteString(m.headerLine(th, w))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", w))

	for i := 0; i < rowsOnScreen; i++ {
		b.WriteByte('\n')
		idx := m.scrollTop + i
		if idx >= len(m.rows) {
			// Blank filler keeps the pane height stable.
			b.WriteString(strings.Repeat(" ", w))
			continue
		}
		b.WriteString(m.rowLine(th, idx, idx == cursor, w))
	}
	return b.String()
}

func (m Model) headerLine(th *theme.Theme, totalWidth int) string {
	cells := make([]string, len(m.colDefs))
	for i, col := range m.colDefs {
		cells[i] = th.ResultsHeader.Render(fitCell(col.Title, col.Width))
	}
	return fillLine(cells, m.usedWidth(), totalWidth, th.ResultsHeader)
}

// rowLine renders one data row. NULL cells render dimmed unless the row is
// selected.
func (m Model) rowLine(th *theme.Theme, idx int, selected bool, totalWidth int) string {
	base := th.ResultsCell
	if selected {
		base = th.ResultsSelectedRow
	}

	row := m.rows[idx]
	cells := make([]string, len(m.colDefs))
	for j, col := range m.colDefs {
		var val string
		if j < len(row) {
			val = row[j]
		}
		style := base
		if val == "NULL" && !selected {
			style = th.ResultsNull
		}
		cells[j] = style.Render(fitCell(val, col.Width))
	}
	return fillLine(cells, m.usedWidth(), totalWidth, base)
}

// fillLine joins rendered cells and extends the last style's background to
// the pane edge.
func fillLine(cells []string, used, totalWidth int, style lipgloss.Style) string {
	line := strings.Join(cells, "")
	if used < totalWidth {
		line += style.Padding(0).Render(strings.Repeat(" ", totalWidth-used))
	}
	return line
}

// fitCell truncates or pads a value to exactly width display cells.
func fitCell(val string, width int) string {
	val = runewidth.Truncate(val, width, "…")
	if pad := width - runewidth.StringWidth(val); pad > 0 {
		val += strings.Repeat(" ", pad)
	}
	return val
}

// usedWidth is the display width the current column set occupies, counting
// the Padding(0,1) each cell style carries.
func (m Model) usedWidth() int {
	used := 0
	for _, col := range m.colDefs {
		used += col.Width + 2
	}
	return used
}

func (m Model) footer(th *theme.Theme) string {
	var parts []string
	if m.totalRows >= 0 {
		parts = append(parts, fmt.Sprintf("%d rows", m.totalRows))
	}
	if m.elapsed > 0 {
		parts = append(parts, formatDuration(m.elapsed))
	}
	if len(parts) == 0 {
		return ""
	}
	return th.MutedText.Render("  " + strings.Join(parts, " | "))
}

// frame wraps content in the focus-aware border.
func (m Model) frame(content string, minHeight int) string {
	th := theme.Current
	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}

	style := border.Width(max(m.width-2, 0))
	if minHeight > 0 {
		style = style.Height(minHeight)
	}
	return style.Render(content)
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func (m *Model) rebuildGrid() {
	m.colDefs = autoSizeColumns(m.colNames, m.rows, m.innerWidth())
	m.table.SetColumns(m.colDefs)

	gridRows := make([]table.Row, len(m.rows))
	for i, row := range m.rows {
		gridRows[i] = table.Row(row)
	}
	m.table.SetRows(gridRows)
}

// innerWidth is the usable width inside the border.
func (m Model) innerWidth() int {
	return max(m.width-2, 10)
}

// gridHeight is how many data rows fit below the header and its separator.
func (m Model) gridHeight() int {
	return max(m.height-3-2, 1)
}

// followCursor scrolls the window so the table cursor stays visible.
func (m *Model) followCursor() {
	cursor := m.table.Cursor()
	h := m.gridHeight()
	if cursor < m.scrollTop {
		m.scrollTop = cursor
	}
	if cursor >= m.scrollTop+h {
		m.scrollTop = cursor - h + 1
	}
	if m.scrollTop < 0 {
		m.scrollTop = 0
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d us", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2f s", d.Seconds())
	default:
		return fmt.Sprintf("%.1f min", d.Minutes())
	}
}

// ---------------------------------------------------------------------------
// Column auto-sizing
// ---------------------------------------------------------------------------

// autoSizeColumns derives column widths from header names and a sample of
// the data, then scales them down proportionally when they would overflow
// maxWidth. Each column also pays 2 cells of style padding.
func autoSizeColumns(cols []string, rows [][]string, maxWidth int) []table.Column {
	if len(cols) == 0 {
		return nil
	}

	widths := naturalWidths(cols, rows)

	padding := len(cols) * 2
	desired := padding
	for _, w := range widths {
		desired += w
	}

	if desired > maxWidth {
		shrinkToFit(widths, max(maxWidth-padding, len(cols)))
	}

	defs := make([]table.Column, len(cols))
	for i, name := range cols {
		defs[i] = table.Column{Title: name, Width: widths[i]}
	}
	return defs
}

// naturalWidths measures each column against its header and up to 100 data
// rows, clamped to [4, 50].
func naturalWidths(cols []string, rows [][]string) []int {
	widths := make([]int, len(cols))
	for i, name := range cols {
		widths[i] = max(len(name), 4)
	}

	sample := min(len(rows), 100)
	for i := 0; i < sample; i++ {
		for j := 0; j < len(cols) && j < len(rows[i]); j++ {
			if n := len(rows[i][j]); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for i := range widths {
		widths[i] = min(widths[i], 50)
	}
	return widths
}

// shrinkToFit rescales widths in place so their sum approaches available,
// keeping every column at least 2 cells wide.
func shrinkToFit(widths []int, available int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for i := range widths {
		widths[i] = max((widths[i]*available)/total, 2)
	}
}
