package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockEndpoint implements driven.SearchEndpoint for testing.
// Responses are handed out in call order; the last one repeats.
type mockEndpoint struct {
	mu        sync.Mutex
	requests  []domain.CrawlRequest
	responses []*domain.CrawlResponse
	err       error
	respond   func(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResponse, error)
}

func (m *mockEndpoint) Search(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	call := len(m.requests) - 1
	respond := m.respond
	m.mu.Unlock()

	if respond != nil {
		return respond(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &domain.CrawlResponse{}, nil
	}
	if call >= len(m.responses) {
		return m.responses[len(m.responses)-1], nil
	}
	return m.responses[call], nil
}

func (m *mockEndpoint) lastRequest() domain.CrawlRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

func (m *mockEndpoint) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// failingStore implements driven.SessionStore and fails selected operations.
type failingStore struct {
	*memory.SessionStore
	getErr  error
	saveErr error
	listErr error
}

func (f *failingStore) GetOrCreate(ctx context.Context, key domain.SessionKey) (*domain.SearchSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.SessionStore.GetOrCreate(ctx, key)
}

func (f *failingStore) Save(ctx context.Context, s *domain.SearchSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.SessionStore.Save(ctx, s)
}

func (f *failingStore) List(ctx context.Context) ([]*domain.SearchSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.SessionStore.List(ctx)
}

// --- Helpers ---

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func newTestController(endpoint *mockEndpoint) (*SearchController, *memory.SessionStore) {
	store := memory.NewSessionStore()
	c := NewSearchController(store, endpoint)
	c.SetClock(func() time.Time { return fixedNow })
	return c, store
}

func result(url string, depth int, body ...string) domain.PageResult {
	return domain.PageResult{
		URL:     url,
		Title:   "Page " + url,
		Depth:   depth,
		Matches: domain.MatchRecord{BodyMatches: body},
	}
}

func intPtr(n int) *int { return &n }

var testRequest = domain.SearchRequest{BaseURL: "https://example.com", SearchText: "golang"}

// --- Tests ---

func TestSearchController_FirstSearchIsFresh(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{
		Results:     []domain.PageResult{result("https://example.com", 0, "golang")},
		VisitedURLs: []string{"https://example.com", "https://example.com/about"},
	}}}
	c, _ := newTestController(endpoint)

	outcome, err := c.ExecuteSearch(context.Background(), testRequest)
	require.NoError(t, err)

	req := endpoint.lastRequest()
	assert.False(t, req.IsResume)
	assert.Nil(t, req.VisitedURLs)
	assert.Equal(t, "https://example.com", req.BaseURL)
	assert.Equal(t, "golang", req.SearchText)

	assert.False(t, outcome.IsResume)
	assert.Equal(t, testRequest.Key(), outcome.Key)
	assert.Equal(t, 2, outcome.NewlyVisitedCount)
	assert.Equal(t, 0, outcome.SkippedCount)
	assert.Equal(t, 2, outcome.TotalVisitedCount)
	assert.Equal(t, 1, outcome.MatchCount)
	assert.Equal(t, fixedNow, outcome.LastUpdated)
	require.Len(t, outcome.Groups, 1)
	assert.Equal(t, 0, outcome.Groups[0].Depth)
}

func TestSearchController_SecondSearchResumes(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{
		{
			Results:     []domain.PageResult{result("A", 0, "x")},
			VisitedURLs: []string{"A", "B", "C"},
		},
		{
			Results:      []domain.PageResult{result("D", 1, "y")},
			VisitedURLs:  []string{"D"},
			SkippedCount: intPtr(3),
		},
	}}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	outcome, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	req := endpoint.lastRequest()
	assert.True(t, req.IsResume)
	assert.Equal(t, []string{"A", "B", "C"}, req.VisitedURLs)

	assert.True(t, outcome.IsResume)
	assert.Equal(t, 1, outcome.NewlyVisitedCount)
	assert.Equal(t, 3, outcome.SkippedCount)
	assert.Equal(t, 4, outcome.TotalVisitedCount)
	require.Len(t, outcome.Groups, 2)
	assert.Equal(t, "A", outcome.Groups[0].Results[0].URL)
	assert.Equal(t, "D", outcome.Groups[1].Results[0].URL)

	session, err := store.Get(ctx, testRequest.Key())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, session.VisitedURLs())
}

func TestSearchController_ResumesAfterZeroResults(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{
		{VisitedURLs: []string{"A"}},
	}}
	c, _ := newTestController(endpoint)
	ctx := context.Background()

	first, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)
	assert.False(t, first.IsResume)
	assert.Empty(t, first.Groups)

	second, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)
	assert.True(t, second.IsResume)
}

func TestSearchController_SkippedCountComputedLocally(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{
		{VisitedURLs: []string{"A", "B", "C"}},
		{VisitedURLs: []string{"A", "B", "D"}},
	}}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	outcome, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.SkippedCount)
	assert.Equal(t, 4, outcome.TotalVisitedCount)

	session, err := store.Get(ctx, testRequest.Key())
	require.NoError(t, err)
	assert.True(t, session.IsVisited("D"))
}

func TestSearchController_ServerReportedSkippedCountWins(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{
		{VisitedURLs: []string{"A"}, SkippedCount: intPtr(0)},
		{VisitedURLs: []string{"A"}, SkippedCount: intPtr(7)},
	}}
	c, _ := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)
	outcome, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	assert.Equal(t, 7, outcome.SkippedCount)
}

func TestSearchController_FailureLeavesSessionUntouched(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "timeout",
			err:      &domain.TransportError{Op: "send request", Retryable: true, Err: context.DeadlineExceeded},
			sentinel: domain.ErrTransport,
		},
		{
			name:     "upstream error",
			err:      &domain.UpstreamError{Message: "authentication failed"},
			sentinel: domain.ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{
				Results:     []domain.PageResult{result("A", 0, "x")},
				VisitedURLs: []string{"A", "B"},
			}}}
			c, store := newTestController(endpoint)
			ctx := context.Background()

			_, err := c.ExecuteSearch(ctx, testRequest)
			require.NoError(t, err)

			session, err := store.Get(ctx, testRequest.Key())
			require.NoError(t, err)
			before := session.Snapshot()

			endpoint.err = tt.err
			_, err = c.ExecuteSearch(ctx, testRequest)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, endpoint.lastRequest().IsResume)
			assert.Equal(t, before, session.Snapshot())
		})
	}
}

func TestSearchController_CancelledAfterResponseDoesNotMerge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	endpoint := &mockEndpoint{
		respond: func(context.Context, domain.CrawlRequest) (*domain.CrawlResponse, error) {
			cancel()
			return &domain.CrawlResponse{VisitedURLs: []string{"A"}}, nil
		},
	}
	c, store := newTestController(endpoint)

	_, err := c.ExecuteSearch(ctx, testRequest)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrTransport)

	session, err := store.Get(context.Background(), testRequest.Key())
	require.NoError(t, err)
	assert.False(t, session.HasVisited())
}

func TestSearchController_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		req  domain.SearchRequest
	}{
		{"missing url", domain.SearchRequest{SearchText: "go"}},
		{"missing search text", domain.SearchRequest{BaseURL: "https://example.com"}},
		{"both missing", domain.SearchRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &mockEndpoint{}
			c, store := newTestController(endpoint)

			_, err := c.ExecuteSearch(context.Background(), tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, domain.FailureInput, domain.ClassifyError(err))
			assert.Equal(t, 0, endpoint.calls())
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestSearchController_NilEndpoint(t *testing.T) {
	c := NewSearchController(memory.NewSessionStore(), nil)

	_, err := c.ExecuteSearch(context.Background(), testRequest)

	assert.ErrorIs(t, err, domain.ErrEndpointUnavailable)
}

func TestSearchController_Credentials(t *testing.T) {
	tests := []struct {
		name     string
		creds    *domain.Credentials
		expected *domain.Credentials
	}{
		{"none", nil, nil},
		{"username only", &domain.Credentials{Username: "u"}, nil},
		{"complete", &domain.Credentials{Username: "u", Password: "p"}, &domain.Credentials{Username: "u", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &mockEndpoint{}
			c, _ := newTestController(endpoint)

			req := testRequest
			req.Credentials = tt.creds
			_, err := c.ExecuteSearch(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, endpoint.lastRequest().Credentials)
		})
	}
}

func TestSearchController_VisitedFallsBackToResultURLs(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{
		Results:    []domain.PageResult{result("A", 0, "x"), result("B", 1, "y")},
		TotalPages: 12,
	}}}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	outcome, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.NewlyVisitedCount)
	assert.Equal(t, outcome.NewlyVisitedCount, outcome.TotalVisitedCount)

	session, err := store.Get(ctx, testRequest.Key())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "https://example.com"}, session.VisitedURLs())
}

func TestSearchController_ResumesAfterEmptyReplyWithoutVisitedList(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{TotalPages: 5}}}
	c, _ := newTestController(endpoint)
	ctx := context.Background()

	first, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)
	assert.False(t, first.IsResume)
	assert.Equal(t, 1, first.NewlyVisitedCount)
	assert.Equal(t, 1, first.TotalVisitedCount)

	second, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)
	assert.True(t, second.IsResume)

	req := endpoint.lastRequest()
	assert.True(t, req.IsResume)
	assert.Equal(t, []string{testRequest.BaseURL}, req.VisitedURLs)

	history, err := c.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestVisitedInRun(t *testing.T) {
	tests := []struct {
		name string
		resp *domain.CrawlResponse
		want []string
	}{
		{
			name: "reported list plus results, deduplicated",
			resp: &domain.CrawlResponse{
				VisitedURLs: []string{"A", "B", "A", ""},
				Results:     []domain.PageResult{result("B", 0), result("C", 1)},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "no list starts with the base url",
			resp: &domain.CrawlResponse{Results: []domain.PageResult{result("A", 1), result("base", 0)}},
			want: []string{"base", "A"},
		},
		{
			name: "empty reply",
			resp: &domain.CrawlResponse{TotalPages: 3},
			want: []string{"base"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visitedInRun("base", tt.resp))
		})
	}
}

func TestSearchController_StoreErrors(t *testing.T) {
	t.Run("load failure", func(t *testing.T) {
		store := &failingStore{SessionStore: memory.NewSessionStore(), getErr: errors.New("disk gone")}
		endpoint := &mockEndpoint{}
		c := NewSearchController(store, endpoint)

		_, err := c.ExecuteSearch(context.Background(), testRequest)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "load session")
		assert.Equal(t, 0, endpoint.calls())
	})

	t.Run("save failure", func(t *testing.T) {
		store := &failingStore{SessionStore: memory.NewSessionStore(), saveErr: errors.New("disk full")}
		c := NewSearchController(store, &mockEndpoint{})

		_, err := c.ExecuteSearch(context.Background(), testRequest)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save session")
	})

	t.Run("list failure", func(t *testing.T) {
		store := &failingStore{SessionStore: memory.NewSessionStore(), listErr: errors.New("locked")}
		c := NewSearchController(store, &mockEndpoint{})

		_, err := c.History(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list sessions")
	})
}

func TestSearchController_ConcurrentSameKeyMergesAreNotLost(t *testing.T) {
	var calls atomic.Int32
	var inFlight sync.WaitGroup
	inFlight.Add(2)

	endpoint := &mockEndpoint{
		respond: func(context.Context, domain.CrawlRequest) (*domain.CrawlResponse, error) {
			n := calls.Add(1)
			// Both requests are outstanding before either response is merged.
			inFlight.Done()
			inFlight.Wait()
			return &domain.CrawlResponse{VisitedURLs: []string{fmt.Sprintf("page-%d", n)}}, nil
		},
	}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ExecuteSearch(ctx, testRequest)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	session, err := store.Get(ctx, testRequest.Key())
	require.NoError(t, err)
	assert.Equal(t, []string{"page-1", "page-2"}, session.VisitedURLs())
	assert.Equal(t, 2, session.TotalPagesConsidered())
	assert.Equal(t, 0, c.locks.size())
}

func TestSearchController_DifferentKeysAreIndependent(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{VisitedURLs: []string{"A"}}}}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	other := domain.SearchRequest{BaseURL: testRequest.BaseURL, SearchText: "Golang"}
	outcome, err := c.ExecuteSearch(ctx, other)
	require.NoError(t, err)

	assert.False(t, outcome.IsResume)
	assert.Equal(t, 2, store.Len())
}

func TestSearchController_History(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{
		Results:     []domain.PageResult{result("A", 0, "x"), result("B", 0)},
		VisitedURLs: []string{"A", "B", "C"},
	}}}
	c, store := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	// A session whose first search failed is not listed.
	endpoint.err = &domain.UpstreamError{Message: "boom"}
	_, err = c.ExecuteSearch(ctx, domain.SearchRequest{BaseURL: "https://other.example", SearchText: "x"})
	require.Error(t, err)
	assert.Equal(t, 2, store.Len())

	history, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	assert.Equal(t, testRequest.Key(), history[0].Key)
	assert.Equal(t, fixedNow, history[0].LastUpdated)
	assert.Equal(t, 1, history[0].TotalResults)
	assert.Equal(t, 3, history[0].TotalPagesConsidered)
}

func TestSearchController_Session(t *testing.T) {
	endpoint := &mockEndpoint{responses: []*domain.CrawlResponse{{
		Results:     []domain.PageResult{result("A", 0, "x")},
		VisitedURLs: []string{"A", "B"},
	}}}
	c, _ := newTestController(endpoint)
	ctx := context.Background()

	_, err := c.Session(ctx, testRequest.Key())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.ExecuteSearch(ctx, testRequest)
	require.NoError(t, err)

	outcome, err := c.Session(ctx, testRequest.Key())
	require.NoError(t, err)

	assert.True(t, outcome.IsResume)
	assert.Equal(t, 2, outcome.TotalVisitedCount)
	assert.Equal(t, 0, outcome.NewlyVisitedCount)
	require.Len(t, outcome.Groups, 1)
	assert.Equal(t, 1, endpoint.calls())
}

func TestSearchController_Session_InvalidKey(t *testing.T) {
	c, _ := newTestController(&mockEndpoint{})

	_, err := c.Session(context.Background(), domain.SessionKey{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
