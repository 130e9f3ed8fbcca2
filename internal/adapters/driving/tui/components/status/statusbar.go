// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	bindings   []key.Binding
	state      State
	message    string
	matchCount int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles:   s,
		keymap:   km,
		bindings: km.ShortHelp(),
		state:    StateReady,
		width:    80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update tracks the terminal width. Everything else is set through methods.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		s.width = size.Width
	}
	return s, nil
}

// View renders the status bar. Hints are dropped from the end until the
// line fits.
func (s *Bar) View() string {
	left := s.renderLeft()
	hints := s.hints()

	right := s.renderRight(hints)
	for len(hints) > 0 && lipgloss.Width(left)+1+lipgloss.Width(right) > s.width {
		hints = hints[:len(hints)-1]
		right = s.renderRight(hints)
	}

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateSearching:
		if s.message != "" {
			return s.styles.Muted.Render(s.message)
		}
		return s.styles.Muted.Render("Searching...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateResults:
		text := fmt.Sprintf("%d pages with matches", s.matchCount)
		if s.matchCount == 1 {
			text = "1 page with matches"
		}
		if s.message != "" {
			text += " | " + s.message
		}
		return s.styles.Success.Render(text)
	case StateReady:
		if s.message != "" {
			return s.styles.Normal.Render(s.message)
		}
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() []string {
	hints := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return hints
}

func (s *Bar) renderRight(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetBindings sets the keybinding hints shown on the right.
func (s *Bar) SetBindings(bindings []key.Binding) {
	s.bindings = bindings
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetMatchCount sets the number of pages with matches.
func (s *Bar) SetMatchCount(count int) {
	s.matchCount = count
}

// MatchCount returns the number of pages with matches.
func (s *Bar) MatchCount() int {
	return s.matchCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.matchCount = 0
}
