package ports

import (
	"context"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// AuditRepository persists the authentication audit trail.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts audit events without blocking the caller on storage.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
