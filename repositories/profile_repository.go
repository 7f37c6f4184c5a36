package repositories

import (
	"context"
	"fmt"

	"github.com/blogem/audio-library/models"
	"gorm.io/gorm"
)

// ProfileRepository handles profile persistence
type ProfileRepository interface {
	GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type gormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

// GetByAccountID returns the profile of an account or ErrNotFound
func (r *gormProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// Create inserts a profile; a second profile for the same account yields ErrDuplicateEntry
func (r *gormProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("create profile for account %d: %w", profile.AccountID, translate(err))
	}
	return nil
}

// Update stores both name fields of an existing profile
func (r *gormProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	result := r.db.WithContext(ctx).Model(profile).
		Select("first_name", "last_name").
		Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("update profile %d: %w", profile.ID, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
