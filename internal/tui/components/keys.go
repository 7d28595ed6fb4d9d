package components

import "github.com/charmbracelet/bubbles/key"

// FilterBarKeyMap defines key bindings for the column filter bar
type FilterBarKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Leave key.Binding
	Clear key.Binding
}

// DefaultFilterBarKeyMap returns the default filter bar key bindings
func DefaultFilterBarKeyMap() FilterBarKeyMap {
	return FilterBarKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next column"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous column"),
		),
		Leave: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc/enter", "back to table"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "clear column"),
		),
	}
}

// JumpKeyMap defines key bindings for the jump-to-row search
type JumpKeyMap struct {
	Escape key.Binding
	Enter  key.Binding
	Up     key.Binding
	Down   key.Binding
}

// DefaultJumpKeyMap returns the default jump key bindings
func DefaultJumpKeyMap() JumpKeyMap {
	return JumpKeyMap{
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "jump"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/C-p", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/C-n", "next"),
		),
	}
}

// Package-level key map instances
var (
	FilterBarKeys = DefaultFilterBarKeyMap()
	JumpKeys      = DefaultJumpKeyMap()
)
