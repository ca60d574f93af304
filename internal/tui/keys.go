package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Tab       key.Binding
	Add       key.Binding
	Delete    key.Binding
	Restore   key.Binding
	IncOne    key.Binding
	DecOne    key.Binding
	IncFive   key.Binding
	DecFive   key.Binding
	IncTen    key.Binding
	Threshold key.Binding
	Alerts    key.Binding
	Deleted   key.Binding
	Refresh   key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add product")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Restore:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restore")),
	IncOne:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "+1 stock")),
	DecOne:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "-1 stock")),
	IncFive:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "+5 stock")),
	DecFive:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "-5 stock")),
	IncTen:    key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "+10 stock")),
	Threshold: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set threshold")),
	Alerts:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "alerts")),
	Deleted:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "deleted view")),
	Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
