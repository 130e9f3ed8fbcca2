package driven

import (
	"context"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// SessionStore is the registry of search sessions keyed by (base URL, search text).
// At most one session exists per key.
type SessionStore interface {
	// GetOrCreate returns the session for key, creating and registering an
	// empty one when none exists.
	GetOrCreate(ctx context.Context, key domain.SessionKey) (*domain.SearchSession, error)

	// Get returns the session for key without creating it.
	// Returns domain.ErrNotFound when the key is unknown.
	Get(ctx context.Context, key domain.SessionKey) (*domain.SearchSession, error)

	// Save persists the current state of a session.
	Save(ctx context.Context, session *domain.SearchSession) error

	// List returns every session, most recently updated first.
	List(ctx context.Context) ([]*domain.SearchSession, error)
}
