package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
)

var errUnknownAuthEvent = errors.New("unknown auth event type")

// AuditService persists authentication audit events.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns an AuditService backed by repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log, now: time.Now}
}

// Process validates and stores a single audit event. Missing ids and
// timestamps are filled in.
func (s *AuditService) Process(ctx context.Context, event domain.AuthEvent) error {
	switch event.Type {
	case domain.AuthLoginSucceeded, domain.AuthLoginFailed, domain.AuthRoleMismatch, domain.AuthLogout:
	default:
		return fmt.Errorf("process auth event: %w: %q", errUnknownAuthEvent, event.Type)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}

	if err := s.repo.InsertAuthEvent(ctx, &event); err != nil {
		return fmt.Errorf("process auth event: %w", err)
	}

	s.log.Debug().
		Str("type", string(event.Type)).
		Str("email", event.Email).
		Str("portal", string(event.Portal)).
		Msg("auth event stored")
	return nil
}
