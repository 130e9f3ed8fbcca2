package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/views/outcome"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx bounds every search and history load started by the TUI.
	ctx context.Context

	styles *styles.Styles

	menuView    *menu.View
	searchView  *search.View
	historyView *history.View
	outcomeView *outcome.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s),
		searchView:  search.NewView(s, km),
		historyView: history.NewView(s, km, ports.Search),
		outcomeView: outcome.NewView(s, km),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
// Cancelling it abandons searches still in flight.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("sitesearch"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.changeView(msg.View)

	case messages.SearchRequested:
		return a, a.startSearch(msg.Request)

	case messages.SessionRequested:
		return a, a.loadSession(msg.Key)

	case messages.SearchCompleted:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.outcomeView, cmd = a.outcomeView.Update(msg)
		return a, cmd

	case messages.SessionLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.outcomeView, cmd = a.outcomeView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewOutcome:
		a.outcomeView, cmd = a.outcomeView.Update(msg)
	case messages.ViewHelp:
		// Esc from help goes to menu
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}

	return cmd
}

// changeView switches the active view and initialises it.
func (a *App) changeView(view messages.ViewType) tea.Cmd {
	previous := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		// Coming back from results keeps the form filled in.
		if previous != messages.ViewOutcome {
			a.searchView.Reset()
		}
		return a.searchView.Init()
	case messages.ViewHistory:
		return a.historyView.Load(a.ctx)
	case messages.ViewMenu, messages.ViewOutcome, messages.ViewHelp:
		// No initialisation needed.
	}
	return nil
}

// startSearch shows the outcome view and runs the search in the background.
func (a *App) startSearch(req domain.SearchRequest) tea.Cmd {
	a.outcomeView.Start(req, a.returnView())
	a.currentView = messages.ViewOutcome
	a.err = nil

	ctx, svc := a.ctx, a.ports.Search
	logger.Debug("tui: searching %s", req.Key())
	return func() tea.Msg {
		result, err := svc.ExecuteSearch(ctx, req)
		return messages.SearchCompleted{Request: req, Outcome: result, Err: err}
	}
}

// loadSession shows a stored session without contacting the search service.
func (a *App) loadSession(key domain.SessionKey) tea.Cmd {
	a.outcomeView.StartCached(key, a.returnView())
	a.currentView = messages.ViewOutcome
	a.err = nil

	ctx, svc := a.ctx, a.ports.Search
	return func() tea.Msg {
		result, err := svc.Session(ctx, key)
		return messages.SessionLoaded{Key: key, Outcome: result, Err: err}
	}
}

// returnView is where esc leads from the outcome view.
// Resuming from the outcome view keeps its original origin.
func (a *App) returnView() messages.ViewType {
	if a.currentView == messages.ViewOutcome {
		return a.outcomeView.Origin()
	}
	return a.currentView
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewOutcome:
		return a.outcomeView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  n / h       New search / history
  q           Quit

New search:
  tab, ↓      Next field
  shift+tab   Previous field
  enter       Start the search

History:
  enter, r    Resume the selected search
  v           View stored results without searching
  ctrl+r      Reload history
  n           New search

Results:
  j/k, ↑/↓    Scroll
  pgup/pgdn   Scroll a page
  g/G         Top / bottom
  r           Resume the search again

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.outcomeView.SetDimensions(width, height)
}
