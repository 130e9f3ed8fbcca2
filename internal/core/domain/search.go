package domain

import (
	"iter"
	"time"
)

// SearchTextSoftLimit is the length beyond which user interfaces warn about a
// search phrase. The core does not enforce it.
const SearchTextSoftLimit = 100

// Credentials are basic-auth credentials for the crawled site.
// They are passed through to the search service untouched.
type Credentials struct {
	Username string
	Password string
}

// IsComplete reports whether both username and password are set.
// Incomplete credentials are not sent.
func (c *Credentials) IsComplete() bool {
	return c != nil && c.Username != "" && c.Password != ""
}

// SearchRequest is one user-initiated search.
type SearchRequest struct {
	// BaseURL is the URL the crawl starts from.
	BaseURL string

	// SearchText is the phrase to find.
	SearchText string

	// Credentials are optional basic-auth credentials for the crawled site.
	Credentials *Credentials
}

// Key returns the session identity of the request.
func (r SearchRequest) Key() SessionKey {
	return SessionKey{BaseURL: r.BaseURL, SearchText: r.SearchText}
}

// CrawlRequest is what the search service receives.
type CrawlRequest struct {
	BaseURL     string
	SearchText  string
	Credentials *Credentials

	// VisitedURLs is set only when resuming; the service skips these pages.
	VisitedURLs []string

	// IsResume mirrors whether VisitedURLs carries a prior run.
	IsResume bool
}

// CrawlResponse is a successful reply from the search service.
type CrawlResponse struct {
	// Results are the pages visited this run, typically only those with matches.
	Results []PageResult

	// VisitedURLs are all URLs fetched this run.
	VisitedURLs []string

	// TotalPages is the number of pages the service reports fetching this run.
	TotalPages int

	// SkippedCount is the number of URLs the service declined to re-fetch.
	// Nil when the service does not report it.
	SkippedCount *int
}

// DepthGroup is the results found at one crawl depth.
type DepthGroup struct {
	Depth   int
	Results []PageResult
}

// CollectGroups materialises a grouped sequence into a slice.
func CollectGroups(groups iter.Seq2[int, []PageResult]) []DepthGroup {
	out := []DepthGroup{}
	for depth, results := range groups {
		out = append(out, DepthGroup{Depth: depth, Results: results})
	}
	return out
}

// SearchOutcome is the render-ready result of a search.
type SearchOutcome struct {
	// Key identifies the session the outcome belongs to.
	Key SessionKey

	// Groups holds every stored result of the session, grouped by depth.
	Groups []DepthGroup

	// NewlyVisitedCount is the number of URLs fetched by this run that the
	// client can name: the reported visited list, or the start page plus result
	// URLs when the service sends none. A bare page total is not counted, so
	// this stays consistent with TotalVisitedCount.
	NewlyVisitedCount int

	// SkippedCount is the number of already-searched URLs that were skipped.
	SkippedCount int

	// TotalVisitedCount is the number of distinct URLs visited across all runs.
	TotalVisitedCount int

	// MatchCount is the number of stored pages with at least one match.
	MatchCount int

	// IsResume is true when the run continued an existing session.
	IsResume bool

	// LastUpdated is when the session was last merged.
	LastUpdated time.Time
}

// SessionSummary is one entry of the search history.
// Key is sufficient to run the same search again.
type SessionSummary struct {
	Key                  SessionKey
	LastUpdated          time.Time
	TotalResults         int
	TotalPagesConsidered int
}
