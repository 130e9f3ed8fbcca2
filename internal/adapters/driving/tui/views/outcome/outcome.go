// Package outcome provides the search outcome view for the TUI.
package outcome

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// View shows the grouped results of a search, live or stored.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	key     domain.SessionKey
	request *domain.SearchRequest
	origin  messages.ViewType
	outcome *domain.SearchOutcome

	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new outcome view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.OutcomeHelp())

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		origin:    messages.ViewMenu,
		width:     80,
		height:    24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Start shows a search in progress. esc returns to origin.
func (v *View) Start(req domain.SearchRequest, origin messages.ViewType) {
	v.reset(req.Key(), origin)
	v.request = &req
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage(fmt.Sprintf("Searching %s for %q...", req.BaseURL, req.SearchText))
}

// StartCached shows a stored session being loaded without searching.
func (v *View) StartCached(key domain.SessionKey, origin messages.ViewType) {
	v.reset(key, origin)
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("Loading stored results...")
}

func (v *View) reset(key domain.SessionKey, origin messages.ViewType) {
	v.key = key
	v.request = nil
	v.origin = origin
	v.outcome = nil
	v.lines = nil
	v.scrollOffset = 0
	v.loading = true
	v.err = nil
}

// Update handles messages for the outcome view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		// A stale reply for a search the user navigated away from.
		if msg.Request.Key() != v.key {
			return v, nil
		}
		v.finish(msg.Outcome, msg.Err)
		return v, nil

	case messages.SessionLoaded:
		if msg.Key != v.key {
			return v, nil
		}
		v.finish(msg.Outcome, msg.Err)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) finish(outcome *domain.SearchOutcome, err error) {
	v.loading = false
	if err != nil {
		v.setError(err)
		return
	}

	v.outcome = outcome
	v.err = nil
	v.wrapContent()

	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMatchCount(outcome.MatchCount)
	v.statusbar.SetMessage(present.Stats(outcome))
}

func (v *View) setError(err error) {
	v.loading = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(errorMessage(err))
}

// errorMessage adds a hint for failures the user can act on.
func errorMessage(err error) string {
	switch domain.ClassifyError(err) {
	case domain.FailureTransport:
		if domain.IsRetryable(err) {
			return err.Error() + " (stored results unchanged, press r to retry)"
		}
	case domain.FailureUpstream:
		return "search service: " + err.Error()
	}
	return err.Error()
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Resume):
		return v, v.resume()
	case keymap.Matches(k, v.keymap.Back):
		origin := v.origin
		return v, func() tea.Msg {
			return messages.ViewChanged{View: origin}
		}
	}

	switch k {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	}

	return v, nil
}

// resume re-runs the current search. Stored sessions are resumed without credentials.
func (v *View) resume() tea.Cmd {
	if v.loading || v.key.BaseURL == "" {
		return nil
	}

	req := domain.SearchRequest{BaseURL: v.key.BaseURL, SearchText: v.key.SearchText}
	if v.request != nil {
		req = *v.request
	}
	return func() tea.Msg {
		return messages.SearchRequested{Request: req}
	}
}

// wrapContent renders the outcome and wraps it to the view width.
func (v *View) wrapContent() {
	if v.outcome == nil {
		v.lines = nil
		return
	}

	contentWidth := max(v.width-4, 20)
	rawLines := strings.Split(strings.TrimRight(present.Outcome(v.styles, v.outcome), "\n"), "\n")
	v.lines = make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		runes := []rune(line)
		// Styled lines carry escape codes, so only plain lines are wrapped.
		if len(runes) <= contentWidth || strings.Contains(line, "\x1b[") {
			v.lines = append(v.lines, line)
			continue
		}
		for len(runes) > contentWidth {
			v.lines = append(v.lines, string(runes[:contentWidth]))
			runes = runes[contentWidth:]
		}
		if len(runes) > 0 {
			v.lines = append(v.lines, string(runes))
		}
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Title, separator, scroll indicator and status bar.
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the outcome view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Waiting for the search service..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + errorMessage(v.err)))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No results)"))
	default:
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		b.WriteString(strings.Join(v.lines[v.scrollOffset:end], "\n"))

		if len(v.lines) > visible {
			percentage := 0
			if v.maxScrollOffset() > 0 {
				percentage = v.scrollOffset * 100 / v.maxScrollOffset()
			}
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) title() string {
	if v.key.BaseURL == "" {
		return "Results"
	}
	return v.key.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
	v.wrapContent()
}

// Key returns the session being shown.
func (v *View) Key() domain.SessionKey {
	return v.key
}

// Origin returns the view esc returns to.
func (v *View) Origin() messages.ViewType {
	return v.origin
}

// Outcome returns the outcome being shown, or nil while loading.
func (v *View) Outcome() *domain.SearchOutcome {
	return v.outcome
}

// Loading reports whether a search or load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
