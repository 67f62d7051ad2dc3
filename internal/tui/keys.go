package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Focus     key.Binding
	BackFocus key.Binding

	// Status tabs
	Tab1 key.Binding
	Tab2 key.Binding
	Tab3 key.Binding

	// Views
	Enter    key.Binding
	Filter   key.Binding
	Search   key.Binding
	Outdated key.Binding
	Casks    key.Binding
	Deps     key.Binding
	Sizes    key.Binding
	Status   key.Binding
	Refresh  key.Binding
	ViewMode key.Binding
	Theme    key.Binding
	IconMode key.Binding
	Cancel   key.Binding
	Quit     key.Binding
	Help     key.Binding

	// Armed actions
	Install    key.Binding
	Uninstall  key.Binding
	Upgrade    key.Binding
	SelfUpdate key.Binding

	// Maintenance
	Cleanup    key.Binding
	Autoremove key.Binding
	Bundle     key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous status tab"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next status tab"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		BackFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous panel"),
		),

		Tab1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "activity"),
		),
		Tab2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "issues"),
		),
		Tab3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "outdated"),
		),

		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter installed"),
		),
		Search: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "search all"),
		),
		Outdated: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "outdated only"),
		),
		Casks: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "formulae/casks"),
		),
		Deps: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "deps & uses"),
		),
		Sizes: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sizes"),
		),
		Status: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "refresh status"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh lists"),
		),
		ViewMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "compact/full"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		IconMode: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "icons"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Install: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "install"),
		),
		Uninstall: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "uninstall"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "upgrade (all from the outdated status tab)"),
		),
		SelfUpdate: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "update brewery"),
		),

		Cleanup: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cleanup"),
		),
		Autoremove: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "autoremove"),
		),
		Bundle: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bundle dump"),
		),
	}
}

// ShortHelp returns a condensed help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Filter, k.Search, k.Install, k.Uninstall, k.Upgrade, k.Help, k.Quit,
	}
}

// FullHelp returns a complete help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Focus, k.BackFocus, k.Left, k.Right},
		{k.Enter, k.Deps, k.Filter, k.Search, k.Outdated, k.Casks, k.Tab1, k.Tab2, k.Tab3},
		{k.Install, k.Uninstall, k.Upgrade, k.SelfUpdate, k.Cleanup, k.Autoremove, k.Bundle},
		{k.Refresh, k.Status, k.Sizes, k.ViewMode, k.Theme, k.IconMode, k.Cancel, k.Help, k.Quit},
	}
}

// isTrigger reports whether keyStr is bound to an armed action.
func (k KeyMap) isTrigger(keyStr string) bool {
	for _, b := range []key.Binding{k.Install, k.Uninstall, k.Upgrade, k.SelfUpdate} {
		for _, s := range b.Keys() {
			if s == keyStr {
				return true
			}
		}
	}
	return false
}
