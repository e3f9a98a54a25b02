package ports

import (
	"context"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// AuthBackend exchanges credentials for an identity and token.
//
// Login fails with domain.ErrInvalidCredentials or domain.ErrNetwork, possibly
// wrapped in a *domain.BackendError carrying the backend's message.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	// Logout drops any server-side state bound to token. Local session
	// clearing never depends on it succeeding.
	Logout(ctx context.Context, token string) error
}
