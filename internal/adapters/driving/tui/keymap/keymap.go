// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Submit runs the search in the form.
	Submit key.Binding

	// NextField moves focus to the next form field.
	NextField key.Binding

	// PrevField moves focus to the previous form field.
	PrevField key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Resume re-runs the selected or shown search.
	Resume key.Binding

	// ShowCached shows stored results without searching.
	ShowCached key.Binding

	// Refresh reloads the history.
	Refresh key.Binding

	// NewSearch opens the search form.
	NewSearch key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Resume: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter/r", "resume search"),
		),
		ShowCached: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view stored"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new search"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FormHelp returns keybindings for the search form.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Back}
}

// HistoryHelp returns keybindings for the history list.
func (k *KeyMap) HistoryHelp() []key.Binding {
	return []key.Binding{k.Resume, k.ShowCached, k.NewSearch, k.Back}
}

// OutcomeHelp returns keybindings for the outcome view.
func (k *KeyMap) OutcomeHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Resume, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextField, k.PrevField},
		{k.Submit, k.Resume, k.ShowCached, k.NewSearch},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
