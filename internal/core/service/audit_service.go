package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/api/metrics"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single login audit event.
func (s *auditService) Record(ctx context.Context, ev domain.LoginEvent) error {
	if ev.Kind == "" {
		return fmt.Errorf("record audit event: missing kind")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, ev); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("record audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues("persisted").Inc()
	s.log.Debug().
		Str("kind", string(ev.Kind)).
		Str("username", ev.Username).
		Msg("audit event recorded")
	return nil
}
