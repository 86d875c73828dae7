// Package session holds the server-side login state: an opaque token maps to
// the resolved tenant config plus the authenticated identity. Nothing else
// security-sensitive is stored, and nothing is kept in process memory.
package session

import (
	"context"
	"time"

	"github.com/maviontech/project-management/internal"
)

type Store interface {
	// Create persists a new session for the principal and returns its
	// opaque token.
	Create(ctx context.Context, p *internal.Principal) (string, error)
	// Get resolves a token back to its principal. Expired or unknown
	// tokens return ErrSessionExpired.
	Get(ctx context.Context, token string) (*internal.Principal, error)
	// Delete invalidates a session (logout).
	Delete(ctx context.Context, token string) error
}

// Options configure session lifetime.
type Options struct {
	TTL time.Duration
}

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return 12 * time.Hour
	}
	return o.TTL
}
