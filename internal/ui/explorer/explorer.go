// Package explorer implements the schema browser pane. It lists the
// databases known to the connection and the tables of the active database,
// loading table columns lazily on first expansion.
package explorer

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmsg "github.com/dbshell/dbshell/internal/msg"
	"github.com/dbshell/dbshell/internal/schema"
	"github.com/dbshell/dbshell/internal/theme"
)

// useSimpleIcons returns true when running inside Neovim's terminal emulator,
// which has emoji width rendering issues in libvterm.
var useSimpleIcons = os.Getenv("NVIM") != ""

// NodeKind represents the type of tree node.
type NodeKind int

const (
	NodeGroup NodeKind = iota
	NodeDatabase
	NodeTable
	NodeColumn
)

// TreeNode represents a node in the explorer tree.
type TreeNode struct {
	Label    string
	Kind     NodeKind
	Children []*TreeNode
	Expanded bool
	Depth    int

	// Metadata for emitting messages
	Database string
	Table    string
	Column   string
	ColType  string
	IsPK     bool

	// True once the columns of a table node have been fetched.
	Loaded bool
}

// Model is the schema explorer pane.
type Model struct {
	nodes   []*TreeNode
	flat    []*TreeNode // flattened visible nodes
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
	loading bool
	current string // active database name
}

// New creates a new explorer.
func New() Model {
	return Model{}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles explorer messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmsg.SchemaLoadedMsg:
		m.current = msg.Current
		m.nodes = buildTree(msg.Databases, msg.Tables, msg.Current)
		m.flatten()
		m.loading = false

	case appmsg.ColumnsLoadedMsg:
		m.attachColumns(msg.Table, msg.Columns)
		m.flatten()

	case appmsg.DatabaseSwitchedMsg:
		m.loading = true

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.ensureVisible()
			}
		case "down", "j":
			if m.cursor < len(m.flat)-1 {
				m.cursor++
				m.ensureVisible()
			}
		case "enter", "right", "l":
			return m, m.toggleOrSelect()
		case "left", "h":
			if m.cursor < len(m.flat) {
				node := m.flat[m.cursor]
				if node.Expanded {
					node.Expanded = false
					m.flatten()
				}
			}
		case "i":
			return m, m.insertIdentifier()
		case "s":
			return m, m.insertSelect()
		case "r":
			m.loading = true
			return m, func() tea.Msg { return appmsg.RefreshSchemaMsg{} }
		case "home", "g":
			m.cursor = 0
			m.offset = 0
		case "end", "G":
			m.cursor = len(m.flat) - 1
			m.ensureVisible()
		}
	}

	return m, nil
}

// View renders the explorer.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	th := theme.Current

	// Account for border (left + right = 2, top + bottom = 2).
	innerW := m.width - 2
	innerH := m.height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	title := " Explorer "
	titleLine := th.ExplorerTitle.Width(innerW).Render(title)

	if m.loading {
		content := titleLine + "\n\n  Loading schema..."
		return m.borderStyle().Width(innerW).Height(innerH).Render(content)
	}

	if len(m.flat) == 0 {
		content := titleLine + "\n\n  No schema loaded.\n  Connect to a database."
		return m.borderStyle().Width(innerW).Height(innerH).Render(content)
	}

	// Render visible nodes: innerH - 1 for the title line.
	contentHeight := innerH - 1
	if contentHeight < 1 {
		contentHeight = 1
	}

	var lines []string
	end := m.offset + contentHeight
	if end > len(m.flat) {
		end = len(m.flat)
	}

	for i := m.offset; i < end; i++ {
		node := m.flat[i]
		lines = append(lines, m.renderNode(node, i == m.cursor, th))
	}

	content := titleLine + "\n" + strings.Join(lines, "\n")
	return m.borderStyle().Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderNode(node *TreeNode, selected bool, th *theme.Theme) string {
	indent := strings.Repeat("  ", node.Depth)

	var icon string
	if useSimpleIcons {
		switch node.Kind {
		case NodeGroup:
			icon = "≡ "
		case NodeDatabase:
			icon = "■ "
		case NodeTable:
			icon = "◆ "
		case NodeColumn:
			icon = "  "
		}
	} else {
		switch node.Kind {
		case NodeGroup:
			icon = "📋 "
		case NodeDatabase:
			icon = "🗄 "
		case NodeTable:
			icon = "📊 "
		case NodeColumn:
			icon = "  "
		}
	}

	// Expand/collapse indicator for parent nodes. Unloaded tables are
	// expandable even though their children have not been fetched yet.
	expandIcon := "  "
	if len(node.Children) > 0 || (node.Kind == NodeTable && !node.Loaded) {
		if node.Expanded {
			expandIcon = "▼ "
		} else {
			expandIcon = "▶ "
		}
	}

	label := node.Label
	if node.Kind == NodeColumn && node.ColType != "" {
		label = fmt.Sprintf("%s %s", node.Label, node.ColType)
	}
	if node.Kind == NodeDatabase && node.Database == m.current {
		label += " *"
	}

	line := indent + expandIcon + icon + label

	// Truncate to width
	maxW := m.width - 4
	if len(line) > maxW {
		line = line[:maxW-1] + "…"
	}
	// Pad
	for len(line) < maxW {
		line += " "
	}

	if selected {
		return th.ExplorerSelected.Render(line)
	}

	switch node.Kind {
	case NodeDatabase:
		return th.ExplorerDatabase.Render(line)
	case NodeTable:
		return th.ExplorerTable.Render(line)
	case NodeColumn:
		if node.IsPK {
			return th.ExplorerColumn.Bold(true).Render(line)
		}
		return th.ExplorerColumn.Render(line)
	default:
		return th.ExplorerColumn.Render(line)
	}
}

func (m Model) borderStyle() lipgloss.Style {
	th := theme.Current
	if m.focused {
		return th.FocusedBorder
	}
	return th.UnfocusedBorder
}

func (m *Model) toggleOrSelect() tea.Cmd {
	if m.cursor >= len(m.flat) {
		return nil
	}
	node := m.flat[m.cursor]

	switch node.Kind {
	case NodeDatabase:
		// Activating a database switches to it; the current one is a no-op.
		if node.Database == m.current {
			return nil
		}
		name := node.Database
		return func() tea.Msg {
			return appmsg.UseDatabaseMsg{Name: name}
		}

	case NodeTable:
		node.Expanded = !node.Expanded
		m.flatten()
		if node.Expanded && !node.Loaded {
			table := node.Table
			return func() tea.Msg {
				return appmsg.LoadColumnsMsg{Table: table}
			}
		}
		return nil

	case NodeColumn:
		text := node.Column
		return func() tea.Msg {
			return appmsg.InsertTextMsg{Text: text}
		}
	}

	// Group nodes just toggle.
	if len(node.Children) > 0 {
		node.Expanded = !node.Expanded
		m.flatten()
	}
	return nil
}

// insertIdentifier emits the name under the cursor for insertion into the
// editor.
func (m *Model) insertIdentifier() tea.Cmd {
	if m.cursor >= len(m.flat) {
		return nil
	}
	node := m.flat[m.cursor]

	var text string
	switch node.Kind {
	case NodeDatabase:
		text = node.Database
	case NodeTable:
		text = node.Table
	case NodeColumn:
		text = node.Column
	default:
		return nil
	}
	return func() tea.Msg {
		return appmsg.InsertTextMsg{Text: text}
	}
}

// insertSelect emits a SELECT template for the table under the cursor.
func (m *Model) insertSelect() tea.Cmd {
	if m.cursor >= len(m.flat) {
		return nil
	}
	node := m.flat[m.cursor]
	if node.Kind != NodeTable {
		return nil
	}
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 100;", quoteIdentifier(node.Table))
	return func() tea.Msg {
		return appmsg.InsertTextMsg{Text: query}
	}
}

// attachColumns fills in the children of the named table node.
func (m *Model) attachColumns(table string, columns []schema.Column) {
	node := m.findTable(table)
	if node == nil {
		return
	}
	node.Children = nil
	for _, c := range columns {
		node.Children = append(node.Children, &TreeNode{
			Label:   c.Name,
			Kind:    NodeColumn,
			Table:   table,
			Column:  c.Name,
			ColType: c.Type,
			IsPK:    c.IsPK,
			Depth:   node.Depth + 1,
		})
	}
	node.Loaded = true
}

func (m *Model) findTable(table string) *TreeNode {
	var walk func(nodes []*TreeNode) *TreeNode
	walk = func(nodes []*TreeNode) *TreeNode {
		for _, n := range nodes {
			if n.Kind == NodeTable && n.Table == table {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(m.nodes)
}

func (m *Model) flatten() {
	m.flat = nil
	for _, node := range m.nodes {
		m.flattenNode(node)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) flattenNode(node *TreeNode) {
	m.flat = append(m.flat, node)
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child)
		}
	}
}

func (m *Model) ensureVisible() {
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+contentHeight {
		m.offset = m.cursor - contentHeight + 1
	}
}

// SetSize sets the explorer dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focus focuses the explorer.
func (m *Model) Focus() { m.focused = true }

// Blur unfocuses the explorer.
func (m *Model) Blur() { m.focused = false }

// Focused returns whether the explorer is focused.
func (m Model) Focused() bool { return m.focused }

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) { m.loading = loading }

// quoteIdentifier wraps a SQL identifier in double-quotes (ANSI style),
// escaping any embedded double-quotes by doubling them.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func buildTree(databases []string, tables []schema.Table, current string) []*TreeNode {
	var nodes []*TreeNode

	if len(databases) > 0 {
		dbGroup := &TreeNode{
			Label:    fmt.Sprintf("Databases (%d)", len(databases)),
			Kind:     NodeGroup,
			Expanded: len(databases) > 1,
		}
		for _, name := range databases {
			dbGroup.Children = append(dbGroup.Children, &TreeNode{
				Label:    name,
				Kind:     NodeDatabase,
				Database: name,
				Depth:    1,
			})
		}
		nodes = append(nodes, dbGroup)
	}

	tablesGroup := &TreeNode{
		Label:    fmt.Sprintf("Tables (%d)", len(tables)),
		Kind:     NodeGroup,
		Database: current,
		Expanded: true,
	}
	for _, t := range tables {
		tableNode := &TreeNode{
			Label:    t.Name,
			Kind:     NodeTable,
			Database: current,
			Table:    t.Name,
			Depth:    1,
			Loaded:   len(t.Columns) > 0,
		}
		for _, c := range t.Columns {
			tableNode.Children = append(tableNode.Children, &TreeNode{
				Label:   c.Name,
				Kind:    NodeColumn,
				Table:   t.Name,
				Column:  c.Name,
				ColType: c.Type,
				IsPK:    c.IsPK,
				Depth:   2,
			})
		}
		tablesGroup.Children = append(tablesGroup.Children, tableNode)
	}
	nodes = append(nodes, tablesGroup)

	return nodes
}
