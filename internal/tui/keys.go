package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Back       key.Binding
	Report     key.Binding
	Authority  key.Binding
	Status     key.Binding
	Severity   key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Send       key.Binding
	InProgress key.Binding
	Resolve    key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Report: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "report new issue"),
	),
	Authority: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "authority view"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "filter status"),
	),
	Severity: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter severity"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev field"),
	),
	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	InProgress: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "start work"),
	),
	Resolve: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resolve"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
