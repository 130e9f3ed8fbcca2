package mcp

import (
	"context"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	outcome   *domain.SearchOutcome
	summaries []domain.SessionSummary
	sessions  map[domain.SessionKey]*domain.SearchOutcome
	err       error

	lastRequest domain.SearchRequest
}

func (m *mockSearchService) ExecuteSearch(_ context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &domain.SearchOutcome{Key: req.Key()}, nil
}

func (m *mockSearchService) History(_ context.Context) ([]domain.SessionSummary, error) {
	return m.summaries, m.err
}

func (m *mockSearchService) Session(_ context.Context, key domain.SessionKey) (*domain.SearchOutcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	if o, ok := m.sessions[key]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func sampleOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Key: domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"},
		Groups: []domain.DepthGroup{
			{Depth: 0, Results: []domain.PageResult{{
				URL:   "https://example.com",
				Title: "Home",
				Matches: domain.MatchRecord{
					HrefMatches: []domain.HrefMatch{{Text: "<mark>go</mark> docs", Href: "/go", OriginalURL: "https://example.com/go"}},
				},
			}}},
			{Depth: 1, Results: []domain.PageResult{{URL: "https://example.com/plain", Depth: 1}}},
		},
		NewlyVisitedCount: 2,
		SkippedCount:      1,
		TotalVisitedCount: 3,
		MatchCount:        1,
		IsResume:          true,
	}
}
