// ABOUTME: Key bindings for the interactive editor.
// ABOUTME: Doubles as the help view's key map.

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New    key.Binding
	Save   key.Binding
	Delete key.Binding
	Rename key.Binding
	Bold   key.Binding
	Italic key.Binding
	Link   key.Binding
	Focus  key.Binding
	Open   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		New:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Rename: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rename")),
		Bold:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "italic")),
		Link:   key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "link")),
		Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Save, k.Delete, k.Rename, k.Bold, k.Italic, k.Link, k.Focus, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Save, k.Delete, k.Rename},
		{k.Bold, k.Italic, k.Link},
		{k.Focus, k.Open, k.Quit},
	}
}
