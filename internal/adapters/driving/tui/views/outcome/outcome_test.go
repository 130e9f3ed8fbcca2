package outcome

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

var key = domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"}

func sampleOutcome(pages int) *domain.SearchOutcome {
	results := make([]domain.PageResult, 0, pages)
	for i := range pages {
		results = append(results, domain.PageResult{
			URL:     fmt.Sprintf("https://example.com/p%d", i),
			Title:   fmt.Sprintf("Page %d", i),
			Depth:   1,
			Matches: domain.MatchRecord{BodyMatches: []string{"about <mark>go</mark>"}},
		})
	}
	return &domain.SearchOutcome{
		Key:               key,
		Groups:            []domain.DepthGroup{{Depth: 1, Results: results}},
		NewlyVisitedCount: pages,
		TotalVisitedCount: pages,
		MatchCount:        pages,
	}
}

func newReadyView() *View {
	v := NewView(nil, nil)
	v.SetDimensions(100, 30)
	return v
}

func TestView_StartShowsProgress(t *testing.T) {
	v := newReadyView()

	v.Start(domain.SearchRequest{BaseURL: key.BaseURL, SearchText: key.SearchText}, messages.ViewSearch)

	assert.True(t, v.Loading())
	assert.Equal(t, key, v.Key())
	assert.Contains(t, v.View(), "Waiting for the search service...")
}

func TestView_SearchCompleted(t *testing.T) {
	v := newReadyView()
	req := domain.SearchRequest{BaseURL: key.BaseURL, SearchText: key.SearchText}
	v.Start(req, messages.ViewSearch)

	v, _ = v.Update(messages.SearchCompleted{Request: req, Outcome: sampleOutcome(2)})

	assert.False(t, v.Loading())
	require.NotNil(t, v.Outcome())
	out := v.View()
	assert.Contains(t, out, "Depth 1")
	assert.Contains(t, out, "Page 0")
	assert.Contains(t, out, "2 pages with matches")
}

func TestView_IgnoresOtherSessions(t *testing.T) {
	v := newReadyView()
	v.StartCached(key, messages.ViewHistory)

	other := domain.SessionKey{BaseURL: "https://other.example", SearchText: "go"}
	v, _ = v.Update(messages.SessionLoaded{Key: other, Outcome: sampleOutcome(1)})
	v, _ = v.Update(messages.SearchCompleted{Request: domain.SearchRequest{BaseURL: other.BaseURL, SearchText: "go"}})

	assert.True(t, v.Loading())
	assert.Nil(t, v.Outcome())
}

func TestView_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"retryable", &domain.TransportError{Op: "send request", Retryable: true, Err: errors.New("timeout")}, "press r to retry"},
		{"upstream", &domain.UpstreamError{Message: "Failed to connect"}, "search service: Failed to connect"},
		{"not found", domain.ErrNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newReadyView()
			v.StartCached(key, messages.ViewHistory)

			v, _ = v.Update(messages.SessionLoaded{Key: key, Err: tt.err})

			assert.ErrorIs(t, v.Err(), tt.err)
			assert.False(t, v.Loading())
			assert.Contains(t, v.View(), tt.contains)
		})
	}
}

func TestView_Scroll(t *testing.T) {
	v := newReadyView()
	v.StartCached(key, messages.ViewHistory)
	v, _ = v.Update(messages.SessionLoaded{Key: key, Outcome: sampleOutcome(40)})
	require.Positive(t, v.maxScrollOffset())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.scrollOffset)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, v.maxScrollOffset(), v.scrollOffset)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Less(t, v.scrollOffset, v.maxScrollOffset())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, v.scrollOffset)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.scrollOffset)
}

func TestView_ResumeRepeatsRequest(t *testing.T) {
	v := newReadyView()
	req := domain.SearchRequest{
		BaseURL:     key.BaseURL,
		SearchText:  key.SearchText,
		Credentials: &domain.Credentials{Username: "alice", Password: "pw"},
	}
	v.Start(req, messages.ViewSearch)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd, "no resume while a search is running")

	v, _ = v.Update(messages.SearchCompleted{Request: req, Outcome: sampleOutcome(1)})
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.SearchRequested{Request: req}, cmd())
}

func TestView_ResumeStoredSession(t *testing.T) {
	v := newReadyView()
	v.StartCached(key, messages.ViewHistory)
	v, _ = v.Update(messages.SessionLoaded{Key: key, Outcome: sampleOutcome(1)})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.SearchRequested{Request: domain.SearchRequest{BaseURL: key.BaseURL, SearchText: key.SearchText}}, cmd())
}

func TestView_EscReturnsToOrigin(t *testing.T) {
	v := newReadyView()
	v.StartCached(key, messages.ViewHistory)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHistory}, cmd())
}

func TestView_EmptyTitle(t *testing.T) {
	v := newReadyView()

	assert.Contains(t, v.View(), "Results")
}
