package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add    key.Binding
	Remove key.Binding
	Choose key.Binding
	Clear  key.Binding
	Submit key.Binding
	Up     key.Binding
	Down   key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "добавить файл"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "удалить файл"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "выбрать"),
	),
	Clear: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "очистить"),
	),
	Submit: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "отправить"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "вверх"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "вниз"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "отмена"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "выход"),
	),
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Clear, k.Add, k.Remove, k.Submit, k.Quit}
}
