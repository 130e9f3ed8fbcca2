// Package search provides the new search form for the TUI.
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// Form fields in focus order.
const (
	fieldURL = iota
	fieldText
	fieldUsername
	fieldPassword
	fieldCount
)

// View is the search form: URL, search text and optional basic auth.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	fields    []*input.Field
	focus     int
	statusbar *status.Bar

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new search form.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	fields := make([]*input.Field, fieldCount)
	fields[fieldURL] = input.NewField(s, "URL", "https://example.com")
	fields[fieldText] = input.NewField(s, "Text", "phrase to find")
	fields[fieldUsername] = input.NewField(s, "Username", "optional")
	fields[fieldPassword] = input.NewField(s, "Password", "optional")
	fields[fieldPassword].SetMasked(true)

	bar := status.NewBar(s, km)
	bar.SetBindings(km.FormHelp())

	v := &View{
		styles:    s,
		keymap:    km,
		fields:    fields,
		statusbar: bar,
		width:     80,
		height:    24,
	}
	v.fields[fieldURL].Focus()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.fields[v.focus].Init()
}

// Update handles messages for the search form.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.Submit):
		return v, v.submit()
	case keymap.Matches(msg.String(), v.keymap.NextField):
		return v, v.setFocus((v.focus + 1) % fieldCount)
	case keymap.Matches(msg.String(), v.keymap.PrevField):
		return v, v.setFocus((v.focus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) setFocus(i int) tea.Cmd {
	v.fields[v.focus].Blur()
	v.focus = i
	return v.fields[v.focus].Focus()
}

// submit validates the form and asks the app to run the search.
func (v *View) submit() tea.Cmd {
	req := v.Request()
	if err := req.Key().Validate(); err != nil {
		v.setError(err)
		return nil
	}

	v.err = nil
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage(fmt.Sprintf("Searching %s...", req.BaseURL))
	return func() tea.Msg {
		return messages.SearchRequested{Request: req}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// Request builds a search request from the form.
// Credentials are attached only when a username is given.
func (v *View) Request() domain.SearchRequest {
	req := domain.SearchRequest{
		BaseURL:    strings.TrimSpace(v.fields[fieldURL].Value()),
		SearchText: v.fields[fieldText].Value(),
	}
	if username := v.fields[fieldUsername].Value(); username != "" {
		req.Credentials = &domain.Credentials{
			Username: username,
			Password: v.fields[fieldPassword].Value(),
		}
	}
	return req
}

// View renders the search form.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("New search"), "")

	for _, f := range v.fields {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	if utf8.RuneCountInString(v.fields[fieldText].Value()) > domain.SearchTextSoftLimit {
		warning := fmt.Sprintf("Search text is longer than %d characters", domain.SearchTextSoftLimit)
		sections = append(sections, v.styles.Warning.Render(warning), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	for _, f := range v.fields {
		f.SetWidth(width)
	}
	v.statusbar.SetWidth(width)
}

// Reset clears the form and focuses the URL field.
func (v *View) Reset() {
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.focus = fieldURL
	v.fields[fieldURL].Focus()
	v.err = nil
	v.statusbar.Clear()
}

// Focus returns the index of the focused field.
func (v *View) Focus() int {
	return v.focus
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
