package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// RecentActivityLimit caps the entries returned for the activity feed
const RecentActivityLimit = 50

// AuditService records actions against accounts and audio files
type AuditService interface {
	// Record writes an entry. Failures are logged and never returned.
	Record(ctx context.Context, accountID int64, action models.AuditAction, entity string, entityID int64, details interface{})
	Recent(ctx context.Context, accountID int64) ([]models.AuditLogEntry, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, accountID int64, action models.AuditAction, entity string, entityID int64, details interface{}) {
	entry := &models.AuditLogEntry{
		AccountID: &accountID,
		Action:    action,
		Entity:    entity,
		EntityID:  &entityID,
	}

	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("failed to encode audit details", zap.String("entity", entity), zap.Error(err))
		} else {
			entry.Details = datatypes.JSON(payload)
		}
	}

	// The entry is written even when the request has been cancelled
	if err := s.auditRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to write audit log entry",
			zap.Int64("account_id", accountID),
			zap.String("action", string(action)),
			zap.String("entity", entity),
			zap.Int64("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// Recent returns the latest entries for the activity feed
func (s *auditService) Recent(ctx context.Context, accountID int64) ([]models.AuditLogEntry, error) {
	entries, err := s.auditRepo.ListForAccount(ctx, accountID, RecentActivityLimit)
	if err != nil {
		s.logger.Error("failed to list audit entries", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
