package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

const defaultSessionTTL = 24 * time.Hour

// Sessions hands out one SessionStore per browser session id.
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessions returns a Sessions factory. A non-positive ttl means 24h.
func NewSessions(client *redis.Client, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{client: client, ttl: ttl}
}

// For returns the store bound to sid.
func (s *Sessions) For(sid string) *SessionStore {
	return &SessionStore{client: s.client, sid: sid, ttl: s.ttl}
}

// SessionStore keeps one identity/token pair in Redis.
// Key format: session:<sid>:identity (JSON) and session:<sid>:token.
type SessionStore struct {
	client *redis.Client
	sid    string
	ttl    time.Duration
}

func (s *SessionStore) identityKey() string { return "session:" + s.sid + ":identity" }
func (s *SessionStore) tokenKey() string    { return "session:" + s.sid + ":token" }

// Current returns the stored pair, or nil if there is none. A pair with only
// one side present is deleted and reported as absent.
func (s *SessionStore) Current(ctx context.Context) (*domain.Session, error) {
	vals, err := s.client.MGet(ctx, s.identityKey(), s.tokenKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	rawIdentity, _ := vals[0].(string)
	token, _ := vals[1].(string)
	if rawIdentity == "" && token == "" {
		return nil, nil
	}
	if rawIdentity == "" || token == "" {
		return nil, s.Clear(ctx)
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &id); err != nil {
		return nil, errors.Join(fmt.Errorf("session decode: %w", err), s.Clear(ctx))
	}
	return &domain.Session{Identity: id, Token: token}, nil
}

// Set writes both keys in one transaction with the same expiry.
func (s *SessionStore) Set(ctx context.Context, identity domain.Identity, token string) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.identityKey(), raw, s.ttl)
		pipe.Set(ctx, s.tokenKey(), token, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Clear removes both keys. Clearing an empty session is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.identityKey(), s.tokenKey()).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
