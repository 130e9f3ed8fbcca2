// Package history provides the search history view for the TUI.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
)

// View lists previous searches and lets the user resume or inspect them.
type View struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	searchService driving.SearchService
	ctx           context.Context

	sessions  *list.SessionList
	statusbar *status.Bar

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new history view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.HistoryHelp())

	return &View{
		styles:        s,
		keymap:        km,
		searchService: searchService,
		ctx:           context.Background(),
		sessions:      list.NewSessionList(s),
		statusbar:     bar,
		width:         80,
		height:        24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that reads the history from the search service.
func (v *View) Load(ctx context.Context) tea.Cmd {
	if v.searchService == nil {
		return nil
	}
	v.ctx = ctx
	v.loading = true
	svc := v.searchService
	return func() tea.Msg {
		summaries, err := svc.History(ctx)
		return messages.HistoryLoaded{Summaries: summaries, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.sessions.SetSummaries(msg.Summaries)
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("%d searches", len(msg.Summaries)))
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, changeView(messages.ViewMenu)
	case keymap.Matches(key, v.keymap.NewSearch):
		return v, changeView(messages.ViewSearch)
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Load(v.ctx)
	case keymap.Matches(key, v.keymap.Resume):
		selected := v.sessions.SelectedSummary()
		if selected == nil {
			return v, nil
		}
		req := domain.SearchRequest{BaseURL: selected.Key.BaseURL, SearchText: selected.Key.SearchText}
		return v, func() tea.Msg {
			return messages.SearchRequested{Request: req}
		}
	case keymap.Matches(key, v.keymap.ShowCached):
		selected := v.sessions.SelectedSummary()
		if selected == nil {
			return v, nil
		}
		sessionKey := selected.Key
		return v, func() tea.Msg {
			return messages.SessionRequested{Key: sessionKey}
		}
	}

	var cmd tea.Cmd
	v.sessions, cmd = v.sessions.Update(msg)
	return v, cmd
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.sessions.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Title, spacing and status bar.
	listHeight := height - 5
	if listHeight < 2 {
		listHeight = 2
	}
	v.sessions.SetDimensions(width, listHeight)
	v.statusbar.SetWidth(width)
}

// Sessions returns the session list component.
func (v *View) Sessions() *list.SessionList {
	return v.sessions
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
