// Package app contains the root Bubble Tea model that wires together the
// explorer, editor, results table, completion popup, status bar and the
// modal overlays.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dbshell/dbshell/internal/adapter"
	"github.com/dbshell/dbshell/internal/audit"
	"github.com/dbshell/dbshell/internal/config"
	"github.com/dbshell/dbshell/internal/history"
	"github.com/dbshell/dbshell/internal/suggest"
	"github.com/dbshell/dbshell/internal/theme"
	"github.com/dbshell/dbshell/internal/ui/connmgr"
	"github.com/dbshell/dbshell/internal/ui/dialog"
	"github.com/dbshell/dbshell/internal/ui/editor"
	"github.com/dbshell/dbshell/internal/ui/explorer"
	"github.com/dbshell/dbshell/internal/ui/historybrowser"
	"github.com/dbshell/dbshell/internal/ui/results"
	"github.com/dbshell/dbshell/internal/ui/statusbar"
	"github.com/dbshell/dbshell/internal/ui/suggestbox"
)

const (
	connectTimeout = 15 * time.Second
	queryTimeout   = 5 * time.Minute

	minExplorerWidth = 20
	maxExplorerWidth = 60
	minEditorPct     = 20
	maxEditorPct     = 80
)

// quitConfirmedMsg is emitted by the quit dialog's confirm button.
type quitConfirmedMsg struct{}

// Options configures the root model.
type Options struct {
	Config  *config.Config
	History *history.History
	Audit   *audit.Logger

	// Initial connection, both empty to start disconnected.
	Engine string
	DSN    string
}

// Model is the root application model.
type Model struct {
	keys   KeyMap
	width  int
	height int

	focus         Pane
	showExplorer  bool
	explorerWidth int
	editorPct     int // editor share of the right column, in percent

	conn   adapter.Connection
	engine string
	dsn    string

	catalog  *connCatalog
	provider *suggest.Provider

	explorer    explorer.Model
	editor      editor.Model
	results     results.Model
	suggestions suggestbox.Model
	status      statusbar.Model
	connections connmgr.Model
	histBrowser historybrowser.Model
	quitDialog  dialog.Model
	help        help.Model
	showHelp    bool

	cfg      *config.Config
	hist     *history.History
	auditLog *audit.Logger

	runID       uint64
	running     bool
	cancelQuery context.CancelFunc

	initialEngine string
	initialDSN    string
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	theme.Current = theme.Get(cfg.Theme)

	catalog := newConnCatalog()

	m := Model{
		keys:          DefaultKeyMap(),
		focus:         PaneEditor,
		showExplorer:  true,
		explorerWidth: 30,
		editorPct:     50,

		catalog:  catalog,
		provider: suggest.NewProvider(catalog),

		explorer:    explorer.New(),
		editor:      editor.New(),
		results:     results.New(),
		suggestions: suggestbox.New(cfg.Suggest.MaxCandidates),
		status:      statusbar.New(),
		connections: connmgr.New(cfg.Connections),
		histBrowser: historybrowser.New(opts.History),
		help:        help.New(),

		cfg:      cfg,
		hist:     opts.History,
		auditLog: opts.Audit,

		initialEngine: opts.Engine,
		initialDSN:    opts.DSN,
	}

	m.quitDialog = dialog.New(
		"Quit",
		"The editor has unsaved changes. Quit anyway?",
		dialog.Button{Label: "Quit", Action: func() tea.Msg { return quitConfirmedMsg{} }},
		dialog.Button{Label: "Cancel", Action: nil},
	)

	m.editor.Focus()
	return m
}

// Init starts the cursor blink and, when an initial DSN was given, the
// connection attempt.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.editor.Init()}
	if m.initialEngine != "" && m.initialDSN != "" {
		cmds = append(cmds, connectCmd(m.initialEngine, m.initialDSN))
	}
	return tea.Batch(cmds...)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

// Update routes messages to the app-level handlers, the modal overlays and
// the focused pane, in that priority order.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case quitConfirmedMsg:
		return m, tea.Quit

	case ConnectMsg:
		return m.onConnect(msg)

	case ConnectErrMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(StatusMsg{Text: "Connection failed: " + msg.Err.Error(), IsError: true})
		return m, cmd

	case SchemaLoadedMsg:
		m.catalog.setTables(msg.Tables)
		var cmd tea.Cmd
		m.explorer, cmd = m.explorer.Update(msg)
		return m, cmd

	case SchemaErrMsg:
		m.explorer.SetLoading(false)
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(StatusMsg{Text: "Schema load failed: " + msg.Err.Error(), IsError: true})
		return m, cmd

	case LoadColumnsMsg:
		return m, loadColumnsCmd(m.conn, msg.Table)

	case ColumnsLoadedMsg:
		m.catalog.setColumns(msg.Table, msg.Columns)
		var cmd tea.Cmd
		m.explorer, cmd = m.explorer.Update(msg)
		return m, cmd

	case ExecuteQueryMsg:
		return m.startQuery(msg.Query)

	case QueryStartedMsg:
		if msg.RunID == m.runID {
			m.results.SetLoading(true)
		}
		return m, nil

	case QueryResultMsg:
		return m.onQueryResult(msg)

	case QueryErrMsg:
		return m.onQueryErr(msg)

	case UseDatabaseMsg:
		m.explorer.SetLoading(true)
		return m, useDatabaseCmd(m.conn, msg.Name)

	case DatabaseSwitchedMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.explorer, cmd = m.explorer.Update(msg)
		cmds = append(cmds, cmd)
		m.status, cmd = m.status.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, loadSchemaCmd(m.conn))
		return m, tea.Batch(cmds...)

	case RefreshSchemaMsg:
		m.explorer.SetLoading(true)
		return m, loadSchemaCmd(m.conn)

	case InsertTextMsg:
		m.editor.InsertText(msg.Text)
		m.setFocus(PaneEditor)
		return m, nil

	case suggestbox.AcceptedMsg:
		m.editor.InsertText(msg.Text)
		return m, nil

	case suggestbox.DismissMsg:
		return m, nil

	case historybrowser.SelectQueryMsg:
		m.editor.SetValue(msg.Query)
		m.setFocus(PaneEditor)
		return m, nil

	case connmgr.ConnectRequestMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(StatusMsg{Text: "Connecting..."})
		return m, tea.Batch(cmd, connectCmd(msg.Engine, msg.DSN))

	case connmgr.ConnectionsUpdatedMsg:
		m.cfg.Connections = msg.Connections
		if err := m.cfg.SaveDefault(); err != nil {
			var cmd tea.Cmd
			m.status, cmd = m.status.Update(StatusMsg{Text: "Save config failed: " + err.Error(), IsError: true})
			return m, cmd
		}
		return m, nil

	case StatusMsg, statusbar.ClearStatusMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	// Everything else goes to the components that keep internal timers.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	m.connections, cmd = m.connections.Update(msg)
	cmds = append(cmds, cmd)
	m.histBrowser, cmd = m.histBrowser.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) onConnect(msg ConnectMsg) (tea.Model, tea.Cmd) {
	if m.conn != nil {
		m.conn.Close()
	}
	m.conn = msg.Conn
	m.engine = msg.Engine
	m.dsn = msg.DSN
	m.catalog.setConnection(msg.Conn)
	m.explorer.SetLoading(true)

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.status, cmd = m.status.Update(msg)
	cmds = append(cmds, cmd)
	cmds = append(cmds, loadSchemaCmd(m.conn))
	return m, tea.Batch(cmds...)
}

func (m Model) onQueryResult(msg QueryResultMsg) (tea.Model, tea.Cmd) {
	if msg.RunID != m.runID {
		return m, nil
	}
	m.running = false
	m.cancelQuery = nil
	m.results.SetLoading(false)

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	cmds = append(cmds, cmd)
	m.status, cmd = m.status.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) onQueryErr(msg QueryErrMsg) (tea.Model, tea.Cmd) {
	if msg.RunID != m.runID {
		return m, nil
	}
	m.running = false
	m.cancelQuery = nil
	m.results.SetLoading(false)
	m.results.SetError(msg.Err)

	var cmd tea.Cmd
	m.status, cmd = m.status.Update(msg)
	return m, cmd
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal overlays swallow all keys while visible.
	if m.connections.Visible() {
		var cmd tea.Cmd
		m.connections, cmd = m.connections.Update(msg)
		return m, cmd
	}
	if m.histBrowser.Visible() {
		var cmd tea.Cmd
		m.histBrowser, cmd = m.histBrowser.Update(msg)
		return m, cmd
	}
	if m.quitDialog.Visible() {
		var cmd tea.Cmd
		m.quitDialog, cmd = m.quitDialog.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// The completion popup takes navigation keys before the editor sees them.
	if m.suggestions.Visible() && m.focus == PaneEditor {
		switch msg.String() {
		case "up", "down", "enter", "tab", "esc", "ctrl+p", "ctrl+n", "ctrl+c":
			var cmd tea.Cmd
			m.suggestions, cmd = m.suggestions.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()

	case key.Matches(msg, m.keys.Cancel):
		if m.running && m.cancelQuery != nil {
			m.cancelQuery()
			return m, nil
		}
		return m.requestQuit()

	case key.Matches(msg, m.keys.Execute):
		query := strings.TrimSpace(m.editor.Value())
		if query == "" {
			return m, nil
		}
		return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }

	case key.Matches(msg, m.keys.ToggleTree):
		m.showExplorer = !m.showExplorer
		if !m.showExplorer && m.focus == PaneExplorer {
			m.setFocus(PaneEditor)
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.conn == nil {
			return m, nil
		}
		m.explorer.SetLoading(true)
		return m, loadSchemaCmd(m.conn)

	case key.Matches(msg, m.keys.Connections):
		m.connections.Show()
		return m, nil

	case key.Matches(msg, m.keys.History):
		if m.hist == nil {
			return m, nil
		}
		m.histBrowser.Show()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.FocusExplorer):
		if m.showExplorer {
			m.setFocus(PaneExplorer)
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusEditor):
		m.setFocus(PaneEditor)
		return m, nil

	case key.Matches(msg, m.keys.FocusResults):
		m.setFocus(PaneResults)
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.cycleFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextPane):
		// Tab stays an editing key inside the editor.
		if m.focus != PaneEditor {
			m.cycleFocus(1)
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+right":
		m.resizeExplorer(2)
		return m, nil
	case "ctrl+left":
		m.resizeExplorer(-2)
		return m, nil
	case "ctrl+up":
		m.resizeEditor(-5)
		return m, nil
	case "ctrl+down":
		m.resizeEditor(5)
		return m, nil
	}

	return m.updateFocusedPane(msg)
}

func (m Model) updateFocusedPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.focus {
	case PaneExplorer:
		m.explorer, cmd = m.explorer.Update(msg)
		cmds = append(cmds, cmd)

	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
		m.refreshSuggestions(msg)
		pos := m.editor.CursorPosition()
		m.status.SetCursor(pos.Line+1, pos.Column+1)

	case PaneResults:
		m.results, cmd = m.results.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refreshSuggestions recomputes the popup after an editing key. Navigation
// keys leave the popup alone so the selection survives cursor movement.
func (m *Model) refreshSuggestions(msg tea.KeyMsg) {
	if !m.cfg.Suggest.Enabled {
		return
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
	default:
		return
	}

	text := m.editor.Value()
	pos := m.editor.CursorPosition()
	word := suggest.WordAt(text, pos)
	if word == "" && msg.Type != tea.KeyRunes {
		m.suggestions.Dismiss()
		return
	}

	candidates := m.provider.Suggestions(text, pos, nil)
	if len(candidates) == 0 {
		m.suggestions.Dismiss()
		return
	}
	m.suggestions.Show(candidates, word)
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.editor.Modified() {
		m.quitDialog.Show()
		return m, nil
	}
	return m, tea.Quit
}

// ---------------------------------------------------------------------------
// Focus and layout
// ---------------------------------------------------------------------------

func (m *Model) setFocus(p Pane) {
	m.focus = p
	m.explorer.Blur()
	m.editor.Blur()
	m.results.Blur()
	m.suggestions.Dismiss()

	switch p {
	case PaneExplorer:
		m.explorer.Focus()
	case PaneEditor:
		m.editor.Focus()
	case PaneResults:
		m.results.Focus()
	}
}

func (m *Model) cycleFocus(dir int) {
	order := []Pane{PaneEditor, PaneResults}
	if m.showExplorer {
		order = []Pane{PaneExplorer, PaneEditor, PaneResults}
	}
	cur := 0
	for i, p := range order {
		if p == m.focus {
			cur = i
			break
		}
	}
	next := (cur + dir + len(order)) % len(order)
	m.setFocus(order[next])
}

func (m *Model) resizeExplorer(delta int) {
	if !m.showExplorer {
		return
	}
	m.explorerWidth += delta
	if m.explorerWidth < minExplorerWidth {
		m.explorerWidth = minExplorerWidth
	}
	if m.explorerWidth > maxExplorerWidth {
		m.explorerWidth = maxExplorerWidth
	}
	m.layout()
}

func (m *Model) resizeEditor(delta int) {
	m.editorPct += delta
	if m.editorPct < minEditorPct {
		m.editorPct = minEditorPct
	}
	if m.editorPct > maxEditorPct {
		m.editorPct = maxEditorPct
	}
	m.layout()
}

// layout distributes the window between the panes. The status bar always
// takes the bottom line.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	mainHeight := m.height - 1

	explorerW := 0
	if m.showExplorer {
		explorerW = m.explorerWidth
		if explorerW > m.width/2 {
			explorerW = m.width / 2
		}
		m.explorer.SetSize(explorerW, mainHeight)
	}

	rightW := m.width - explorerW
	editorH := mainHeight * m.editorPct / 100
	if editorH < 3 {
		editorH = 3
	}
	resultsH := mainHeight - editorH
	if resultsH < 3 {
		resultsH = 3
		editorH = mainHeight - resultsH
	}

	m.editor.SetSize(rightW, editorH)
	m.results.SetSize(rightW, resultsH)
	m.status.SetSize(m.width)
	m.connections.SetSize(m.width, m.height)
	m.histBrowser.SetSize(m.width, m.height)
	m.quitDialog.SetSize(m.width, m.height)
	m.help.Width = m.width
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View composes the pane layout and stacks any visible overlay on top.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	right := lipgloss.JoinVertical(lipgloss.Left, m.editor.View(), m.results.View())

	var main string
	if m.showExplorer {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.explorer.View(), right)
	} else {
		main = right
	}

	view := lipgloss.JoinVertical(lipgloss.Left, main, m.status.View())

	if m.suggestions.Visible() && m.focus == PaneEditor {
		view = m.overlaySuggestions(view)
	}

	switch {
	case m.connections.Visible():
		return m.centerOverlay(view, m.connections.View())
	case m.histBrowser.Visible():
		return m.centerOverlay(view, m.histBrowser.View())
	case m.quitDialog.Visible():
		return m.quitDialog.Overlay(view)
	case m.showHelp:
		return m.centerOverlay(view, m.helpView())
	}

	return view
}

func (m Model) helpView() string {
	th := theme.Current
	h := m.help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		th.DialogTitle.Render("  Key Bindings  "),
		"",
		h.View(m.keys),
	)
	return th.DialogBorder.Render(content)
}

// overlaySuggestions paints the completion popup just below the cursor line
// inside the editor pane.
func (m Model) overlaySuggestions(view string) string {
	popup := m.suggestions.View()
	if popup == "" {
		return view
	}

	pos := m.editor.CursorPosition()
	x := pos.Column + 6 // border plus line number gutter
	y := pos.Line + 2   // border plus the line below the cursor
	if m.showExplorer {
		x += m.explorerWidth
	}
	return overlayAt(view, popup, x, y)
}

// centerOverlay places fg centered over bg line by line.
func (m Model) centerOverlay(bg, fg string) string {
	fgW := lipgloss.Width(fg)
	fgH := lipgloss.Height(fg)
	x := (m.width - fgW) / 2
	y := (m.height - fgH) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return overlayAt(bg, fg, x, y)
}

// overlayAt paints fg over bg starting at cell (x, y). Lines past the bottom
// of bg are dropped.
func overlayAt(bg, fg string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for i, fgLine := range fgLines {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		line := bgLines[row]
		runes := []rune(stripANSI(line))

		var prefix string
		if x <= len(runes) {
			prefix = string(runes[:x])
		} else {
			prefix = string(runes) + strings.Repeat(" ", x-len(runes))
		}

		var suffix string
		end := x + lipgloss.Width(fgLine)
		if end < len(runes) {
			suffix = string(runes[end:])
		}
		bgLines[row] = prefix + fgLine + suffix
	}

	return strings.Join(bgLines, "\n")
}

// stripANSI removes escape sequences so overlay column math counts cells, not
// bytes. The popup repaints the affected rows anyway.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		if r == '\x1b' {
			inEscape = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func connectCmd(engine, dsn string) tea.Cmd {
	return func() tea.Msg {
		a, err := adapter.Lookup(engine)
		if err != nil {
			return ConnectErrMsg{Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		conn, err := a.Connect(ctx, dsn)
		if err != nil {
			return ConnectErrMsg{Err: err}
		}
		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			return ConnectErrMsg{Err: err}
		}
		return ConnectMsg{Conn: conn, Engine: engine, DSN: dsn}
	}
}

func loadSchemaCmd(conn adapter.Connection) tea.Cmd {
	if conn == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		databases, err := conn.Databases(ctx)
		if err != nil {
			return SchemaErrMsg{Err: err}
		}
		tables, err := conn.Tables(ctx)
		if err != nil {
			return SchemaErrMsg{Err: err}
		}
		return SchemaLoadedMsg{
			Databases: databases,
			Tables:    tables,
			Current:   conn.DatabaseName(),
		}
	}
}

func loadColumnsCmd(conn adapter.Connection, table string) tea.Cmd {
	if conn == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		columns, err := conn.Columns(ctx, table)
		if err != nil {
			return SchemaErrMsg{Err: err}
		}
		return ColumnsLoadedMsg{Table: table, Columns: columns}
	}
}

func useDatabaseCmd(conn adapter.Connection, name string) tea.Cmd {
	if conn == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := conn.UseDatabase(ctx, name); err != nil {
			return SchemaErrMsg{Err: err}
		}
		return DatabaseSwitchedMsg{Name: name}
	}
}

// startQuery kicks off query execution, cancelling any run still in flight.
func (m Model) startQuery(query string) (tea.Model, tea.Cmd) {
	if m.conn == nil {
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(StatusMsg{Text: "Not connected", IsError: true})
		return m, cmd
	}
	if m.cancelQuery != nil {
		m.cancelQuery()
	}

	m.runID++
	m.running = true
	m.editor.ResetModified()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	m.cancelQuery = cancel

	runID := m.runID
	started := func() tea.Msg { return QueryStartedMsg{RunID: runID} }
	run := m.executeCmd(ctx, query, runID)
	return m, tea.Batch(started, run)
}

func (m Model) executeCmd(ctx context.Context, query string, runID uint64) tea.Cmd {
	conn := m.conn
	hist := m.hist
	auditLog := m.auditLog
	engine := m.engine
	dsn := m.dsn

	return func() tea.Msg {
		start := time.Now()
		result, err := conn.Execute(ctx, query)
		elapsed := time.Since(start)

		var rowCount int64
		if result != nil {
			rowCount = result.RowCount
		}

		if hist != nil {
			hist.Add(history.Entry{
				Query:        query,
				Engine:       engine,
				DatabaseName: conn.DatabaseName(),
				ExecutedAt:   start,
				DurationMS:   elapsed.Milliseconds(),
				RowCount:     rowCount,
				IsError:      err != nil,
			})
		}
		auditLog.Log(audit.Entry{
			Timestamp:    start,
			Query:        query,
			Engine:       engine,
			DatabaseName: conn.DatabaseName(),
			DurationMS:   elapsed.Milliseconds(),
			RowCount:     rowCount,
			IsError:      err != nil,
			DSN:          audit.SanitizeDSN(dsn),
		})

		if err != nil {
			if ctx.Err() != nil {
				err = adapter.ErrCancelled
			}
			return QueryErrMsg{Err: err, RunID: runID}
		}
		return QueryResultMsg{Result: result, RunID: runID}
	}
}

// ShowConnectionManager opens the connection manager modal. The CLI calls it
// on startup when no DSN was given.
func (m *Model) ShowConnectionManager() {
	m.connections.Show()
}

// Close releases the database connection and the history and audit handles.
func (m *Model) Close() {
	if m.cancelQuery != nil {
		m.cancelQuery()
	}
	if m.conn != nil {
		m.conn.Close()
	}
	if m.hist != nil {
		m.hist.Close()
	}
	m.auditLog.Close()
}
