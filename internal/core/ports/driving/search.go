package driving

import (
	"context"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// SearchService provides resumable site search to external actors.
type SearchService interface {
	// ExecuteSearch runs one search, resuming the session for the request's
	// key when it already has visited pages.
	ExecuteSearch(ctx context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error)

	// History lists every known session, most recently updated first.
	History(ctx context.Context) ([]domain.SessionSummary, error)

	// Session returns the cached view of one session without searching.
	// Returns domain.ErrNotFound when the key is unknown.
	Session(ctx context.Context, key domain.SessionKey) (*domain.SearchOutcome, error)
}
