package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// Ensure SearchController implements the interface.
var _ driving.SearchService = (*SearchController)(nil)

// SearchController runs searches against the external service and keeps the
// per-session history consistent.
//
// A search either merges a complete response into its session or leaves the
// session exactly as it was. Merges for the same key are serialised; searches
// for different keys run independently.
type SearchController struct {
	store    driven.SessionStore
	endpoint driven.SearchEndpoint
	locks    *keyedLocker
	now      func() time.Time
}

// NewSearchController creates a new search controller.
func NewSearchController(store driven.SessionStore, endpoint driven.SearchEndpoint) *SearchController {
	return &SearchController{
		store:    store,
		endpoint: endpoint,
		locks:    newKeyedLocker(),
		now:      time.Now,
	}
}

// SetClock replaces the time source used to stamp merges.
func (c *SearchController) SetClock(now func() time.Time) {
	c.now = now
}

// ExecuteSearch runs one search for req.
//
// The first search for a key is fresh. Every later one resumes: the service
// receives the URLs already visited so it can skip them, and the new results are
// merged into the stored session.
func (c *SearchController) ExecuteSearch(
	ctx context.Context, req domain.SearchRequest,
) (*domain.SearchOutcome, error) {
	logger.Section("Search Execution")

	key := req.Key()
	if err := key.Validate(); err != nil {
		logger.Debug("Rejected request: %v", err)
		return nil, err
	}
	if c.endpoint == nil {
		return nil, domain.ErrEndpointUnavailable
	}
	if len([]rune(req.SearchText)) > domain.SearchTextSoftLimit {
		logger.Warn("Search text is longer than %d characters", domain.SearchTextSoftLimit)
	}

	session, err := c.store.GetOrCreate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	isResume := session.HasVisited()
	crawlReq := domain.CrawlRequest{
		BaseURL:    req.BaseURL,
		SearchText: req.SearchText,
		IsResume:   isResume,
	}
	if req.Credentials.IsComplete() {
		crawlReq.Credentials = req.Credentials
	}
	if isResume {
		crawlReq.VisitedURLs = session.VisitedURLs()
	}
	logger.Debug("Session: %s", key)
	logger.Info("Mode: resume=%t, previously visited=%d", isResume, len(crawlReq.VisitedURLs))

	resp, err := c.endpoint.Search(ctx, crawlReq)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search %s: %w", key, err)
	}
	// A response that arrives after cancellation is discarded.
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "search", Retryable: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	visitedThisRun := visitedInRun(req.BaseURL, resp)
	logger.Debug("Service returned %d results, %d visited URLs", len(resp.Results), len(visitedThisRun))

	unlock := c.locks.Lock(key)
	defer unlock()

	// Reload under the lock: a concurrent search for the same key may have
	// merged since the session was first read.
	session, err = c.store.GetOrCreate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}

	skipped := session.SkippedURLCount(visitedThisRun)
	if resp.SkippedCount != nil {
		skipped = *resp.SkippedCount
	}

	stats := session.Merge(visitedThisRun, resp.Results, c.now())
	logger.Debug("Merge: %d new URLs, %d inserted, %d replaced", stats.NewURLs, stats.Inserted, stats.Replaced)

	if err := c.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if len(resp.VisitedURLs) == 0 && resp.TotalPages > len(visitedThisRun) {
		logger.Debug("Service reported %d pages but named %d", resp.TotalPages, len(visitedThisRun))
	}

	outcome := buildOutcome(session)
	outcome.IsResume = isResume
	outcome.NewlyVisitedCount = len(visitedThisRun)
	outcome.SkippedCount = skipped

	logger.Info("Visited %d, skipped %d, total %d, pages with matches %d",
		outcome.NewlyVisitedCount, outcome.SkippedCount, outcome.TotalVisitedCount, outcome.MatchCount)

	return outcome, nil
}

// History lists every session that has completed at least one search.
func (c *SearchController) History(ctx context.Context) ([]domain.SessionSummary, error) {
	sessions, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]domain.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		// Sessions whose first search failed have nothing to reuse.
		if s.LastUpdated().IsZero() {
			continue
		}
		summaries = append(summaries, s.Summary())
	}
	logger.Debug("History: %d sessions", len(summaries))
	return summaries, nil
}

// Session returns the cached outcome for key without contacting the service.
func (c *SearchController) Session(ctx context.Context, key domain.SessionKey) (*domain.SearchOutcome, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	session, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", key, err)
	}

	outcome := buildOutcome(session)
	outcome.IsResume = session.HasVisited()
	return outcome, nil
}

// buildOutcome captures the session-wide part of an outcome.
func buildOutcome(session *domain.SearchSession) *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Key:               session.Key(),
		Groups:            domain.CollectGroups(session.ResultsGroupedByDepth()),
		TotalVisitedCount: session.TotalPagesConsidered(),
		MatchCount:        session.MatchCount(),
		LastUpdated:       session.LastUpdated(),
	}
}

// visitedInRun returns the distinct URLs fetched by one run: the reported
// visited list plus every result URL, in first-seen order. A reply without a
// visited list still fetched the start page, so baseURL leads the list.
func visitedInRun(baseURL string, resp *domain.CrawlResponse) []string {
	seen := make(map[string]struct{}, len(resp.VisitedURLs)+len(resp.Results))
	urls := make([]string, 0, len(resp.VisitedURLs)+len(resp.Results))

	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	if len(resp.VisitedURLs) == 0 {
		add(baseURL)
	}
	for _, u := range resp.VisitedURLs {
		add(u)
	}
	for i := range resp.Results {
		add(resp.Results[i].URL)
	}
	return urls
}
