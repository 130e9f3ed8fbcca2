package driven

import (
	"context"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// SearchEndpoint is the external crawl-and-search service.
//
// Implementations return *domain.TransportError for network, status and
// decoding failures and *domain.UpstreamError when the service answers with an
// explicit error. A returned response is always complete.
type SearchEndpoint interface {
	// Search crawls req.BaseURL and returns the matches found.
	Search(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlResponse, error)
}
