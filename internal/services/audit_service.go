package services

import (
	"context"

	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuditServiceImpl implements AuditService
var _ AuditService = (*AuditServiceImpl)(nil)

// AuditServiceImpl appends immutable audit entries for every mutating
// operation in the engine.
type AuditServiceImpl struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new AuditServiceImpl
func NewAuditService(auditRepo repositories.AuditRepository) *AuditServiceImpl {
	return &AuditServiceImpl{auditRepo: auditRepo}
}

// Record appends an audit entry outside any transaction. A failed append
// is logged and never fails the business operation it describes.
func (s *AuditServiceImpl) Record(ctx context.Context, entry *models.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		slog.Error("failed to append audit entry",
			"error", err, "action", entry.Action, "entityType", entry.EntityType, "entityId", entry.EntityID)
	}
}

// RecordTx appends an audit entry as a normal step of the caller's open
// transaction. The draw uses this: a failed audit write aborts the draw,
// so no draw commits without its forensic record.
func (s *AuditServiceImpl) RecordTx(ctx context.Context, entry *models.AuditLog) error {
	return s.auditRepo.Create(ctx, entry)
}

// List returns audit entries newest first.
func (s *AuditServiceImpl) List(ctx context.Context, filter repositories.AuditFilter, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.auditRepo.Find(ctx, filter, limit)
}
