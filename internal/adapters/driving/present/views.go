package present

import (
	"time"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// Machine-readable views shared by the JSON output and the MCP tools.
// Field names are stable for scripts.

// HrefMatchView is one matching link.
type HrefMatchView struct {
	Text        string `json:"text"`
	Href        string `json:"href"`
	OriginalURL string `json:"original_url,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
}

// ResultView is one page with matches.
type ResultView struct {
	URL         string          `json:"url"`
	Title       string          `json:"title,omitempty"`
	Depth       int             `json:"depth"`
	BodyMatches []string        `json:"body_matches,omitempty"`
	HeadMatches []string        `json:"head_matches,omitempty"`
	HrefMatches []HrefMatchView `json:"href_matches,omitempty"`
}

// DepthGroupView is the matching pages at one crawl depth.
type DepthGroupView struct {
	Depth   int          `json:"depth"`
	Results []ResultView `json:"results"`
}

// OutcomeView is a search outcome.
type OutcomeView struct {
	BaseURL           string           `json:"base_url"`
	SearchText        string           `json:"search_text"`
	IsResume          bool             `json:"is_resume"`
	NewlyVisitedCount int              `json:"newly_visited_count"`
	SkippedCount      int              `json:"skipped_count"`
	TotalVisitedCount int              `json:"total_visited_count"`
	MatchCount        int              `json:"match_count"`
	LastUpdated       string           `json:"last_updated,omitempty"`
	Groups            []DepthGroupView `json:"groups"`
}

// SummaryView is one history entry.
type SummaryView struct {
	BaseURL              string `json:"base_url"`
	SearchText           string `json:"search_text"`
	LastUpdated          string `json:"last_updated,omitempty"`
	TotalResults         int    `json:"total_results"`
	TotalPagesConsidered int    `json:"total_pages_considered"`
}

// NewOutcomeView keeps only pages with matches, like Outcome.
func NewOutcomeView(o *domain.SearchOutcome) OutcomeView {
	out := OutcomeView{
		BaseURL:           o.Key.BaseURL,
		SearchText:        o.Key.SearchText,
		IsResume:          o.IsResume,
		NewlyVisitedCount: o.NewlyVisitedCount,
		SkippedCount:      o.SkippedCount,
		TotalVisitedCount: o.TotalVisitedCount,
		MatchCount:        o.MatchCount,
		LastUpdated:       formatRFC3339(o.LastUpdated),
		Groups:            []DepthGroupView{},
	}

	for _, g := range o.Groups {
		group := DepthGroupView{Depth: g.Depth}
		for _, r := range g.Results {
			if r.HasMatches() {
				group.Results = append(group.Results, newResultView(r))
			}
		}
		if len(group.Results) > 0 {
			out.Groups = append(out.Groups, group)
		}
	}
	return out
}

func newResultView(r domain.PageResult) ResultView {
	out := ResultView{
		URL:         r.URL,
		Title:       r.Title,
		Depth:       r.Depth,
		BodyMatches: r.Matches.BodyMatches,
		HeadMatches: r.Matches.HeadMatches,
	}
	for _, h := range r.Matches.HrefMatches {
		out.HrefMatches = append(out.HrefMatches, HrefMatchView{
			Text:        h.Text,
			Href:        h.Href,
			OriginalURL: h.OriginalURL,
			PageURL:     h.PageURL,
		})
	}
	return out
}

// NewSummaryViews converts history entries, never returning nil.
func NewSummaryViews(summaries []domain.SessionSummary) []SummaryView {
	out := make([]SummaryView, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, SummaryView{
			BaseURL:              s.Key.BaseURL,
			SearchText:           s.Key.SearchText,
			LastUpdated:          formatRFC3339(s.LastUpdated),
			TotalResults:         s.TotalResults,
			TotalPagesConsidered: s.TotalPagesConsidered,
		})
	}
	return out
}

func formatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
