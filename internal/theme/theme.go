// Package theme provides a centralized styling system for the dbshell
// terminal UI. Every visual element references a lipgloss.Style held in a
// Theme struct so that the entire look-and-feel can be swapped at runtime.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every UI element in the application.
type Theme struct {
	Name string

	// App-level
	AppBackground lipgloss.Style

	// Schema explorer
	ExplorerBorder     lipgloss.Style
	ExplorerTitle      lipgloss.Style
	ExplorerDatabase   lipgloss.Style
	ExplorerTable      lipgloss.Style
	ExplorerColumn     lipgloss.Style
	ExplorerColumnType lipgloss.Style
	ExplorerSelected   lipgloss.Style

	// Editor
	EditorBorder     lipgloss.Style
	EditorLineNumber lipgloss.Style
	EditorCursor     lipgloss.Style

	// SQL Syntax highlighting
	SQLKeyword    lipgloss.Style
	SQLString     lipgloss.Style
	SQLNumber     lipgloss.Style
	SQLComment    lipgloss.Style
	SQLOperator   lipgloss.Style
	SQLFunction   lipgloss.Style
	SQLType       lipgloss.Style
	SQLIdentifier lipgloss.Style

	// Results table
	ResultsBorder      lipgloss.Style
	ResultsHeader      lipgloss.Style
	ResultsCell        lipgloss.Style
	ResultsSelectedRow lipgloss.Style
	ResultsNull        lipgloss.Style

	// Status bar
	StatusBar        lipgloss.Style
	StatusBarKey     lipgloss.Style
	StatusBarValue   lipgloss.Style
	StatusBarError   lipgloss.Style
	StatusBarSuccess lipgloss.Style

	// Suggestion popup
	SuggestItem     lipgloss.Style
	SuggestSelected lipgloss.Style
	SuggestBorder   lipgloss.Style

	// Modal dialogs
	DialogBorder       lipgloss.Style
	DialogTitle        lipgloss.Style
	DialogButton       lipgloss.Style
	DialogButtonActive lipgloss.Style

	// General
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
	ErrorText       lipgloss.Style
	SuccessText     lipgloss.Style
	WarningText     lipgloss.Style
	MutedText       lipgloss.Style
}

// palette is the raw color set a theme is built from. Styles that share a
// color on purpose (selection, status key, borders) pull from the same field
// so a palette stays consistent when edited.
type palette struct {
	background lipgloss.Color
	surface    lipgloss.Color
	border     lipgloss.Color
	accent     lipgloss.Color
	text       lipgloss.Color
	muted      lipgloss.Color

	errorC   lipgloss.Color
	successC lipgloss.Color
	warningC lipgloss.Color

	selectionFg lipgloss.Color
	selectionBg lipgloss.Color

	// SQL token colors
	keyword    lipgloss.Color
	str        lipgloss.Color
	number     lipgloss.Color
	comment    lipgloss.Color
	operator   lipgloss.Color
	function   lipgloss.Color
	typeName   lipgloss.Color
	identifier lipgloss.Color

	database lipgloss.Color
	table    lipgloss.Color
	header   lipgloss.Color

	lineNumber lipgloss.Color
	cursor     lipgloss.Color

	statusFg      lipgloss.Color
	statusBg      lipgloss.Color
	statusKeyFg   lipgloss.Color
	statusKeyBg   lipgloss.Color
	statusValueBg lipgloss.Color
}

// build derives the full style set from a palette.
func build(name string, p palette) *Theme {
	base := lipgloss.NewStyle()
	box := base.BorderStyle(lipgloss.RoundedBorder())
	pad := base.PaddingLeft(1).PaddingRight(1)

	return &Theme{
		Name: name,

		AppBackground: base.Background(p.background),

		ExplorerBorder:     box.BorderForeground(p.border),
		ExplorerTitle:      base.Bold(true).Foreground(p.accent).PaddingLeft(1),
		ExplorerDatabase:   base.Bold(true).Foreground(p.database),
		ExplorerTable:      base.Foreground(p.table),
		ExplorerColumn:     base.Foreground(p.text),
		ExplorerColumnType: base.Italic(true).Foreground(p.muted),
		ExplorerSelected:   base.Bold(true).Foreground(p.selectionFg).Background(p.selectionBg),

		EditorBorder:     box.BorderForeground(p.border),
		EditorLineNumber: base.Foreground(p.lineNumber),
		EditorCursor:     base.Background(p.cursor),

		SQLKeyword:    base.Bold(true).Foreground(p.keyword),
		SQLString:     base.Foreground(p.str),
		SQLNumber:     base.Foreground(p.number),
		SQLComment:    base.Italic(true).Foreground(p.comment),
		SQLOperator:   base.Foreground(p.operator),
		SQLFunction:   base.Foreground(p.function),
		SQLType:       base.Foreground(p.typeName),
		SQLIdentifier: base.Foreground(p.identifier),

		ResultsBorder:      box.BorderForeground(p.border),
		ResultsHeader:      base.Bold(true).Foreground(p.header).Background(p.surface),
		ResultsCell:        base.Foreground(p.text),
		ResultsSelectedRow: base.Foreground(p.selectionFg).Background(p.selectionBg),
		ResultsNull:        base.Italic(true).Foreground(p.muted),

		StatusBar:        base.Foreground(p.statusFg).Background(p.statusBg),
		StatusBarKey:     pad.Bold(true).Foreground(p.statusKeyFg).Background(p.statusKeyBg),
		StatusBarValue:   pad.Foreground(p.text).Background(p.statusValueBg),
		StatusBarError:   base.Bold(true).Foreground(p.selectionFg).Background(p.errorC),
		StatusBarSuccess: base.Bold(true).Foreground(p.statusKeyFg).Background(p.successC),

		SuggestItem:     pad.Foreground(p.text).Background(p.surface),
		SuggestSelected: pad.Foreground(p.selectionFg).Background(p.selectionBg),
		SuggestBorder:   box.BorderForeground(p.accent),

		DialogBorder:       box.BorderForeground(p.accent).Padding(1, 2),
		DialogTitle:        base.Bold(true).Foreground(p.accent),
		DialogButton:       base.Foreground(p.text).Background(p.border).Padding(0, 2),
		DialogButtonActive: base.Bold(true).Foreground(p.statusKeyFg).Background(p.statusKeyBg).Padding(0, 2),

		FocusedBorder:   box.BorderForeground(p.accent),
		UnfocusedBorder: box.BorderForeground(p.border),
		ErrorText:       base.Bold(true).Foreground(p.errorC),
		SuccessText:     base.Foreground(p.successC),
		WarningText:     base.Foreground(p.warningC),
		MutedText:       base.Foreground(p.muted),
	}
}

// ---------------------------------------------------------------------------
// Palettes
// ---------------------------------------------------------------------------

// darkTheme is the VS Code inspired default.
func darkTheme() *Theme {
	return build("default", palette{
		background: "#1E1E1E",
		surface:    "#252526",
		border:     "#3C3C3C",
		accent:     "#569CD6",
		text:       "#D4D4D4",
		muted:      "#808080",

		errorC:   "#F44747",
		successC: "#6A9955",
		warningC: "#CCA700",

		selectionFg: "#FFFFFF",
		selectionBg: "#264F78",

		keyword:    "#569CD6",
		str:        "#CE9178",
		number:     "#B5CEA8",
		comment:    "#6A9955",
		operator:   "#D4D4D4",
		function:   "#DCDCAA",
		typeName:   "#4EC9B0",
		identifier: "#9CDCFE",

		database: "#DCDCAA",
		table:    "#4EC9B0",
		header:   "#569CD6",

		lineNumber: "#858585",
		cursor:     "#AEAFAD",

		statusFg:      "#FFFFFF",
		statusBg:      "#007ACC",
		statusKeyFg:   "#FFFFFF",
		statusKeyBg:   "#007ACC",
		statusValueBg: "#1E1E1E",
	})
}

func lightTheme() *Theme {
	return build("light", palette{
		background: "#FFFFFF",
		surface:    "#F3F3F3",
		border:     "#D4D4D4",
		accent:     "#0451A5",
		text:       "#1E1E1E",
		muted:      "#A0A0A0",

		errorC:   "#E51400",
		successC: "#16825D",
		warningC: "#BF8803",

		selectionFg: "#FFFFFF",
		selectionBg: "#0060C0",

		keyword:    "#0000FF",
		str:        "#A31515",
		number:     "#098658",
		comment:    "#008000",
		operator:   "#1E1E1E",
		function:   "#795E26",
		typeName:   "#267F99",
		identifier: "#001080",

		database: "#795E26",
		table:    "#267F99",
		header:   "#0451A5",

		lineNumber: "#237893",
		cursor:     "#000000",

		statusFg:      "#FFFFFF",
		statusBg:      "#0060C0",
		statusKeyFg:   "#FFFFFF",
		statusKeyBg:   "#0060C0",
		statusValueBg: "#F3F3F3",
	})
}

func monokaiTheme() *Theme {
	t := build("monokai", palette{
		background: "#272822",
		surface:    "#3E3D32",
		border:     "#49483E",
		accent:     "#F92672",
		text:       "#F8F8F2",
		muted:      "#75715E",

		errorC:   "#F92672",
		successC: "#A6E22E",
		warningC: "#E6DB74",

		selectionFg: "#F8F8F2",
		selectionBg: "#49483E",

		keyword:    "#F92672",
		str:        "#E6DB74",
		number:     "#AE81FF",
		comment:    "#75715E",
		operator:   "#F92672",
		function:   "#A6E22E",
		typeName:   "#66D9EF",
		identifier: "#F8F8F2",

		database: "#E6DB74",
		table:    "#A6E22E",
		header:   "#A6E22E",

		lineNumber: "#90908A",
		cursor:     "#F8F8F0",

		statusFg:      "#F8F8F2",
		statusBg:      "#75715E",
		statusKeyFg:   "#272822",
		statusKeyBg:   "#A6E22E",
		statusValueBg: "#3E3D32",
	})
	t.SQLType = t.SQLType.Italic(true)
	return t
}

// ---------------------------------------------------------------------------
// Registry and accessors
// ---------------------------------------------------------------------------

// Themes maps theme names to their Theme definitions.
var Themes = map[string]*Theme{
	"default": darkTheme(),
	"light":   lightTheme(),
	"monokai": monokaiTheme(),
}

// Current is the currently active theme. It is initialized to Default.
var Current = Themes["default"]

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme identified by name. If no theme with that name exists
// it falls back to the default theme.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}
