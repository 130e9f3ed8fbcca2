package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	mu       sync.Mutex
	requests []domain.SearchRequest

	outcome   *domain.SearchOutcome
	err       error
	summaries []domain.SessionSummary
	sessions  map[domain.SessionKey]*domain.SearchOutcome
}

func (m *mockSearchService) ExecuteSearch(_ context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &domain.SearchOutcome{Key: req.Key(), Groups: []domain.DepthGroup{}}, nil
}

func (m *mockSearchService) History(_ context.Context) ([]domain.SessionSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
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

func (m *mockSearchService) lastRequest() domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.SearchRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.err != nil {
		return m.err
	}
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{
		"endpoint.requests_per_minute",
		"endpoint.timeout_seconds",
		"endpoint.url",
		"endpoint.user_agent",
		"storage.backend",
		"storage.dir",
	}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// setupTestServices installs mocks and resets command flags.
// The returned func restores the previous state.
func setupTestServices() func() {
	oldSearch, oldSettings := searchService, settingsService
	oldBootstrap, oldClose := bootstrap, closeService

	searchService = &mockSearchService{}
	settingsService = newMockSettingsService()
	bootstrap = nil
	closeService = nil
	resetFlags()

	return func() {
		searchService, settingsService = oldSearch, oldSettings
		bootstrap, closeService = oldBootstrap, oldClose
		resetFlags()
	}
}

// resetFlags returns every flag on every command to its default. Cobra keeps
// flag values, --help included, between Execute calls on the same tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(reset)
		cmd.PersistentFlags().VisitAll(reset)
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}
