package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global key bindings. The bindings double as the source
// for the help overlay.
type KeyMap struct {
	Execute       key.Binding
	Cancel        key.Binding
	NextPane      key.Binding
	PrevPane      key.Binding
	FocusExplorer key.Binding
	FocusEditor   key.Binding
	FocusResults  key.Binding
	ToggleTree    key.Binding
	Refresh       key.Binding
	Connections   key.Binding
	History       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the standard key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Execute: key.NewBinding(
			key.WithKeys("ctrl+e", "f5"),
			key.WithHelp("ctrl+e", "execute query"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel query"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous pane"),
		),
		FocusExplorer: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("alt+1", "focus explorer"),
		),
		FocusEditor: key.NewBinding(
			key.WithKeys("alt+2"),
			key.WithHelp("alt+2", "focus editor"),
		),
		FocusResults: key.NewBinding(
			key.WithKeys("alt+3"),
			key.WithHelp("alt+3", "focus results"),
		),
		ToggleTree: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle explorer"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh schema"),
		),
		Connections: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "connections"),
		),
		History: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "query history"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns the bindings for the compact help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Execute, k.NextPane, k.Help, k.Quit}
}

// FullHelp returns the bindings grouped for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Execute, k.Cancel, k.Refresh},
		{k.NextPane, k.PrevPane, k.FocusExplorer, k.FocusEditor, k.FocusResults},
		{k.ToggleTree, k.Connections, k.History},
		{k.Help, k.Quit},
	}
}
