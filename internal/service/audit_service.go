package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"task-manager-api/internal/model"
)

const (
	ActionLogin              = "auth.login"
	ActionCredentialMigrated = "auth.credential_migrated"
	ActionUserRegistered     = "user.registered"
	ActionUserDeleted        = "user.deleted"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

// AuditService records security-relevant events. Recording is best-effort:
// a failed write is logged but never fails the request that triggered it.
type AuditService struct {
	store auditStore
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) Record(ctx context.Context, action string, actorID string, subject string, status string, detail string) {
	if s == nil {
		return
	}

	entry := model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:    actorID,
		Subject:    subject,
		Status:     status,
		Detail:     detail,
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Error("audit write failed", "action", action, "error", err)
	}
}

func (s *AuditService) List(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	return s.store.Query(ctx, query)
}
