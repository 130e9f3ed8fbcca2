package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/logger"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	URL        string `json:"url" jsonschema:"the website URL the crawl starts from"`
	SearchText string `json:"search_text" jsonschema:"the phrase to find"`
	Username   string `json:"username,omitempty" jsonschema:"basic auth username for the website"`
	Password   string `json:"password,omitempty" jsonschema:"basic auth password for the website"`
}

// SessionInput is the input schema for the session tool.
type SessionInput struct {
	URL        string `json:"url" jsonschema:"the website URL of a previous search"`
	SearchText string `json:"search_text" jsonschema:"the phrase of a previous search"`
}

// SearchOutput is the output schema for the search and session tools.
type SearchOutput struct {
	Outcome present.OutcomeView `json:"outcome"`

	// Notice is the resume message, empty for fresh searches.
	Notice string `json:"notice,omitempty"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Searches []present.SummaryView `json:"searches"`
	Count    int                   `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search",
		Description: "Search a website for text. Repeating a search for the same url and text " +
			"resumes it: already-searched pages are skipped and results accumulate.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "List previous searches, most recently updated first",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session",
		Description: "Show the stored results of a previous search without searching again",
	}, s.handleSession)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := domain.SearchRequest{BaseURL: input.URL, SearchText: input.SearchText}
	if input.Username != "" || input.Password != "" {
		req.Credentials = &domain.Credentials{Username: input.Username, Password: input.Password}
	}

	outcome, err := s.ports.Search.ExecuteSearch(ctx, req)
	if err != nil {
		logger.Debug("mcp search %s failed: %v", req.Key(), err)
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Outcome: present.NewOutcomeView(outcome),
		Notice:      present.ResumeNotice(outcome),
	}, nil
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, HistoryOutput, error) {
	summaries, err := s.ports.Search.History(ctx)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	return nil, HistoryOutput{
		Searches: present.NewSummaryViews(summaries),
		Count:    len(summaries),
	}, nil
}

// handleSession handles the session tool invocation.
func (s *Server) handleSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	outcome, err := s.ports.Search.Session(ctx, domain.SessionKey{BaseURL: input.URL, SearchText: input.SearchText})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{Outcome: present.NewOutcomeView(outcome)}, nil
}
