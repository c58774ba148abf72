// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// ChooserKeyMap defines the keybindings for the instance chooser. Printable
// keys feed the filter, so navigation uses arrows and ctrl chords only.
type ChooserKeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Select      key.Binding
	ClearFilter key.Binding
	Backspace   key.Binding

	// General
	Cancel key.Binding
}

// DefaultChooserKeyMap returns the default chooser keybindings.
func DefaultChooserKeyMap() ChooserKeyMap {
	return ChooserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑/ctrl+p", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓/ctrl+n", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear filter"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k ChooserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

// FullHelp returns keybindings for the full help view.
func (k ChooserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom}, // Navigation
		{k.Select, k.ClearFilter},       // Actions
		{k.Cancel},                      // General
	}
}
