package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/present"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

const (
	uriScheme = "sitesearch://"

	historyURI  = uriScheme + "history"
	sessionPath = uriScheme + "session"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "history",
		Description: "Every stored search, most recently updated first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: sessionPath + "{?url,text}",
		Name:        "session",
		Description: "Stored results of one search",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// historyEntry adds the session resource URI to a summary.
type historyEntry struct {
	present.SummaryView
	URI string `json:"uri"`
}

// handleHistoryResource returns every stored search.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	summaries, err := s.ports.Search.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]historyEntry, 0, len(summaries))
	for _, v := range present.NewSummaryViews(summaries) {
		entries = append(entries, historyEntry{
			SummaryView: v,
			URI:         sessionURI(domain.SessionKey{BaseURL: v.BaseURL, SearchText: v.SearchText}),
		})
	}

	return jsonResource(req.Params.URI, entries)
}

// handleSessionResource returns the stored results of one search.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key, ok := parseSessionURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	outcome, err := s.ports.Search.Session(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return jsonResource(req.Params.URI, present.NewOutcomeView(outcome))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// sessionURI builds sitesearch://session?url=...&text=...
func sessionURI(key domain.SessionKey) string {
	q := url.Values{}
	q.Set("url", key.BaseURL)
	q.Set("text", key.SearchText)
	return sessionPath + "?" + q.Encode()
}

// parseSessionURI is the inverse of sessionURI.
func parseSessionURI(uri string) (domain.SessionKey, bool) {
	rest, ok := strings.CutPrefix(uri, sessionPath+"?")
	if !ok {
		return domain.SessionKey{}, false
	}
	q, err := url.ParseQuery(rest)
	if err != nil {
		return domain.SessionKey{}, false
	}

	key := domain.SessionKey{BaseURL: q.Get("url"), SearchText: q.Get("text")}
	if key.Validate() != nil {
		return domain.SessionKey{}, false
	}
	return key, true
}
