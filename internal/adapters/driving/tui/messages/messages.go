// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// SearchRequested asks the app to run (or resume) a search.
type SearchRequested struct {
	Request domain.SearchRequest
}

// SearchCompleted carries the outcome of a search back to the model.
type SearchCompleted struct {
	Request domain.SearchRequest
	Outcome *domain.SearchOutcome
	Err     error
}

// SessionRequested asks the app to show a stored session without searching.
type SessionRequested struct {
	Key domain.SessionKey
}

// SessionLoaded carries a stored session.
type SessionLoaded struct {
	Key     domain.SessionKey
	Outcome *domain.SearchOutcome
	Err     error
}

// HistoryLoaded carries the search history.
type HistoryLoaded struct {
	Summaries []domain.SessionSummary
	Err       error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the new search form.
	ViewSearch
	// ViewHistory lists previous searches.
	ViewHistory
	// ViewOutcome shows the results of one search.
	ViewOutcome
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHistory:
		return "history"
	case ViewOutcome:
		return "outcome"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
