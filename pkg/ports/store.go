package ports

import (
	"context"
	"time"

	"github.com/opencivic/sahayak/pkg/domain"
)

// SessionStore defines the interface for persisting dialogue sessions.
// This allows callers to drop a call mid-flow and resume it later from
// any process that shares the backend.
type SessionStore interface {
	// Initialize prepares the backend (creates directories, pings the
	// server). It must be safe to call more than once.
	Initialize(ctx context.Context) error

	// Get retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Put persists the session under the given ID, overwriting any
	// previous snapshot. A ttl of zero means the session never expires.
	Put(ctx context.Context, sessionID string, sess *domain.Session, ttl time.Duration) error

	// Delete removes the session for a given ID. Deleting a missing
	// session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// LoadAll returns every stored session keyed by ID. Backends that
	// cannot enumerate cheaply return domain.ErrBulkUnsupported.
	LoadAll(ctx context.Context) (map[string]*domain.Session, error)

	// SaveAll persists every given session in one pass. Backends that
	// cannot do this cheaply return domain.ErrBulkUnsupported.
	SaveAll(ctx context.Context, sessions map[string]*domain.Session) error
}
