package repositories

import (
	"context"

	"github.com/blogem/audio-library/models"
	"gorm.io/gorm"
)

// AuditRepository handles audit log persistence. Entries are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	ListForAccount(ctx context.Context, accountID int64, limit int) ([]models.AuditLogEntry, error)
}

type gormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *gormAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListForAccount returns the latest entries recorded for an account
func (r *gormAuditRepository) ListForAccount(ctx context.Context, accountID int64, limit int) ([]models.AuditLogEntry, error) {
	entries := []models.AuditLogEntry{}
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
