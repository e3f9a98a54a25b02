package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedTokens implements ports.TokenRevocations.
// Key format: revoked:<jti>, expiring when the token itself would.
type RevokedTokens struct {
	client *redis.Client
}

func NewRevokedTokens(client *redis.Client) *RevokedTokens {
	return &RevokedTokens{client: client}
}

func revokedKey(jti string) string { return "revoked:" + jti }

// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op: the
// token has already expired.
func (r *RevokedTokens) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked and has not expired yet.
func (r *RevokedTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
