// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// linesPerItem is the height of one rendered entry.
const linesPerItem = 2

// SessionList displays search history entries in a navigable list.
type SessionList struct {
	summaries []domain.SessionSummary
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewSessionList creates a new session list component.
func NewSessionList(s *styles.Styles) *SessionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SessionList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *SessionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *SessionList) View() string {
	if len(r.summaries) == 0 {
		return r.styles.Muted.Render("No searches yet")
	}

	lines := make([]string, 0, len(r.summaries)*linesPerItem+2)

	header := r.styles.Title.Render(fmt.Sprintf("Searches (%d)", len(r.summaries)))
	lines = append(lines, header, "")

	visibleCount := (r.height - 2) / linesPerItem
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.summaries))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderSummary(i, r.summaries[i]))
	}

	return strings.Join(lines, "\n")
}

// renderSummary formats one history entry.
func (r *SessionList) renderSummary(index int, s domain.SessionSummary) string {
	title := truncate(fmt.Sprintf("%q  %s", s.Key.SearchText, s.Key.BaseURL), r.width-4)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render("> " + title)
	} else {
		titleLine = r.styles.Normal.Render("  " + title)
	}

	return titleLine + "\n" + r.styles.Muted.Render("    "+present.SummaryDetail(s))
}

// truncate shortens s to limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	limit = max(limit, 10)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// SetSummaries replaces the list contents, keeping the selection in range.
func (r *SessionList) SetSummaries(summaries []domain.SessionSummary) {
	r.summaries = summaries
	if r.selected >= len(summaries) {
		r.selected = max(len(summaries)-1, 0)
	}
}

// Summaries returns the current entries.
func (r *SessionList) Summaries() []domain.SessionSummary {
	return r.summaries
}

// Selected returns the index of the selected entry.
func (r *SessionList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *SessionList) SetSelected(index int) {
	if index >= 0 && index < len(r.summaries) {
		r.selected = index
	}
}

// SelectedSummary returns the selected entry, or nil if the list is empty.
func (r *SessionList) SelectedSummary() *domain.SessionSummary {
	if len(r.summaries) == 0 || r.selected < 0 || r.selected >= len(r.summaries) {
		return nil
	}
	return &r.summaries[r.selected]
}

// MoveUp moves selection up.
func (r *SessionList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *SessionList) MoveDown() {
	if r.selected < len(r.summaries)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *SessionList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of entries.
func (r *SessionList) Count() int {
	return len(r.summaries)
}
