package ports

import (
	"context"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// SessionStore holds at most one identity/token pair.
//
// Current returns nil when nothing is stored. Implementations never return a
// half-populated session: if only one side is found it is cleared and nil is
// returned. Clear is idempotent.
type SessionStore interface {
	Current(ctx context.Context) (*domain.Session, error)
	Set(ctx context.Context, identity domain.Identity, token string) error
	Clear(ctx context.Context) error
}
