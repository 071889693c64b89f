package ports

import (
	"context"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

// AuditRepository persists login audit events.
type AuditRepository interface {
	Insert(ctx context.Context, ev domain.LoginEvent) error
}

// AuditService records a single audit event.
type AuditService interface {
	Record(ctx context.Context, ev domain.LoginEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(ev domain.LoginEvent)
}

// AuditReader lists a user's most recent audit events, newest first.
type AuditReader interface {
	RecentByUsername(ctx context.Context, username string, limit int64) ([]domain.LoginEvent, error)
}
