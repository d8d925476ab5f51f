package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/plx/internal/config"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Search      key.Binding
	TapSentinel key.Binding
	Select      key.Binding
	OpenImage   key.Binding
	Details     key.Binding
	Back        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap(b config.KeyBindings) keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
		Top:         binding(b.Top, "top"),
		Bottom:      binding(b.Bottom, "bottom"),
		Search:      binding(b.Search, "search"),
		TapSentinel: binding(b.TapSentinel, "back to top"),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		OpenImage:   binding(b.OpenImage, "open image"),
		Details:     binding(b.Details, "details"),
		Back:        binding(b.Back, "back"),
		Help:        binding(b.Help, "help"),
		Quit:        key.NewBinding(key.WithKeys(b.Quit, "ctrl+c"), key.WithHelp(b.Quit, "quit")),
	}
}

func binding(k, help string) key.Binding {
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, help))
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Search, k.TapSentinel, k.Details, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp},
		{k.Top, k.Bottom, k.TapSentinel, k.Select},
		{k.Search, k.OpenImage, k.Details, k.Back},
		{k.Help, k.Quit},
	}
}
