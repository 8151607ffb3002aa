package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keys to console actions.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Focus    key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Activate key.Binding
	Toggle   key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Create   key.Binding
	Delete   key.Binding
	Copy     key.Binding
	Info     key.Binding
	Save     key.Binding
	Reset    key.Binding
	Read     key.Binding
	Write    key.Binding
	Format   key.Binding
	Actual   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
		Top:      key.NewBinding(key.WithKeys("g", "home")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Expand:   key.NewBinding(key.WithKeys("right", "l")),
		Collapse: key.NewBinding(key.WithKeys("left", "h")),
		Create:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Info:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reset:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Read:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "read values")),
		Write:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write value")),
		Format:   key.NewBinding(key.WithKeys("f")),
		Actual:   key.NewBinding(key.WithKeys("a")),
	}
}

// hints renders bindings as "key desc" pairs for the footer.
func hints(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
