package ports

import (
	"context"
	"time"
)

// TokenRevocations remembers tokens revoked before their expiry, keyed by
// the token id (jti). Entries only need to live as long as the token would.
type TokenRevocations interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
