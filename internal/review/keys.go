package review

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings of the review prompts.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Apply   key.Binding
	Discard key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Apply: key.NewBinding(
			key.WithKeys("y", "a"),
			key.WithHelp("y", "apply"),
		),
		Discard: key.NewBinding(
			key.WithKeys("n", "d"),
			key.WithHelp("n", "discard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// helpLine renders "key: desc" pairs for the given bindings.
func helpLine(s Styles, bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return s.Help.Render(strings.Join(parts, "  "))
}
