package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Search  key.Binding
	Field   key.Binding
	Sign    key.Binding
	Sort    key.Binding
	Today   key.Binding
	Week    key.Binding
	Month   key.Binding
	Year    key.Binding
	All     key.Binding
	Refresh key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read letter")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Field:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "search field")),
	Sign:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sign/unsign")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sort")),
	Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
	Week:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "past week")),
	Month:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "past month")),
	Year:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "past year")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all time")),
	Refresh: key.NewBinding(key.WithKeys("R", "r"), key.WithHelp("R", "refresh")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back/cancel")),
}
