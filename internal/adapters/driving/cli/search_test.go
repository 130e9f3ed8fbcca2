package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetErr(nil)
	}()

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func sampleOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Key: domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"},
		Groups: []domain.DepthGroup{
			{Depth: 0, Results: []domain.PageResult{{
				URL:     "https://example.com",
				Title:   "Home",
				Matches: domain.MatchRecord{BodyMatches: []string{"learn <mark>go</mark>"}},
			}}},
			{Depth: 1, Results: []domain.PageResult{{URL: "https://example.com/about", Depth: 1}}},
		},
		NewlyVisitedCount: 2,
		SkippedCount:      4,
		TotalVisitedCount: 6,
		MatchCount:        1,
		IsResume:          true,
	}
}

func TestSearchCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := runCmd(t, "", "search", "https://example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSearchCmd_PrintsOutcome(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockSearchService{outcome: sampleOutcome()}
	searchService = mock

	out, errOut, err := runCmd(t, "", "search", " https://example.com ", "go")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{BaseURL: "https://example.com", SearchText: "go"}, mock.lastRequest())
	assert.Contains(t, errOut, `Searching https://example.com for "go"...`)
	assert.Contains(t, out, "Resumed search: skipped 4 already-searched URLs.")
	assert.Contains(t, out, "Depth 0 (1)")
	assert.Contains(t, out, "body: learn go")
	assert.NotContains(t, out, "Depth 1")
}

func TestSearchCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{outcome: sampleOutcome()}

	out, errOut, err := runCmd(t, "", "search", "--json", "https://example.com", "go")

	require.NoError(t, err)
	assert.Empty(t, errOut)

	var got present.OutcomeView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "https://example.com", got.BaseURL)
	assert.True(t, got.IsResume)
	assert.Equal(t, 4, got.SkippedCount)
	assert.Equal(t, 6, got.TotalVisitedCount)
	require.Len(t, got.Groups, 1, "groups without matches are omitted")
	assert.Equal(t, 0, got.Groups[0].Depth)
	assert.Equal(t, []string{"learn <mark>go</mark>"}, got.Groups[0].Results[0].BodyMatches)
	assert.Empty(t, got.LastUpdated)
}

func TestSearchCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty url", []string{"search", " ", "go"}},
		{"empty text", []string{"search", "https://example.com", ""}},
		{"password without username", []string{"search", "--password-stdin", "https://example.com", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			mock := &mockSearchService{}
			searchService = mock

			_, _, err := runCmd(t, "secret\n", tt.args...)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 2, ExitCode(err))
			assert.Empty(t, mock.requests)
		})
	}
}

func TestSearchCmd_WarnsOnLongText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, errOut, err := runCmd(t, "", "search", "https://example.com", strings.Repeat("x", 101))

	require.NoError(t, err)
	assert.Contains(t, errOut, "longer than 100 characters")
}

func TestSearchCmd_PasswordStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockSearchService{}
	searchService = mock

	_, _, err := runCmd(t, "s3cret\r\nignored\n", "search", "-u", "alice", "--password-stdin", "https://example.com", "go")

	require.NoError(t, err)
	assert.Equal(t, &domain.Credentials{Username: "alice", Password: "s3cret"}, mock.lastRequest().Credentials)
}

func TestSearchCmd_AskPasswordFallsBackToLine(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockSearchService{}
	searchService = mock

	_, errOut, err := runCmd(t, "hunter2\n", "search", "-u", "alice", "--ask-password", "https://example.com", "go")

	require.NoError(t, err)
	assert.Contains(t, errOut, "Password: ")
	assert.Equal(t, "hunter2", mock.lastRequest().Credentials.Password)
}

func TestSearchCmd_UsernameOnly(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockSearchService{}
	searchService = mock

	_, _, err := runCmd(t, "", "search", "-u", "alice", "https://example.com", "go")

	require.NoError(t, err)
	creds := mock.lastRequest().Credentials
	require.NotNil(t, creds)
	assert.False(t, creds.IsComplete())
}

func TestSearchCmd_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		exitCode int
		contains string
	}{
		{
			name:     "upstream",
			err:      &domain.UpstreamError{Message: "Failed to connect to the website"},
			exitCode: 4,
			contains: "search service: Failed to connect to the website",
		},
		{
			name:     "retryable transport",
			err:      &domain.TransportError{Op: "send request", Retryable: true, Err: errors.New("timeout")},
			exitCode: 3,
			contains: "try again later",
		},
		{
			name:     "permanent transport",
			err:      &domain.TransportError{Op: "send request", StatusCode: 400, Err: errors.New("bad request")},
			exitCode: 3,
			contains: "status 400",
		},
		{
			name:     "unknown",
			err:      errors.New("disk full"),
			exitCode: 1,
			contains: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			searchService = &mockSearchService{err: tt.err}

			out, _, err := runCmd(t, "", "search", "https://example.com", "go")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.exitCode, ExitCode(err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.Empty(t, out)
		})
	}
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, _, err := runCmd(t, "", "search", "https://example.com", "go")

	assert.ErrorIs(t, err, errNotConfigured)
}
