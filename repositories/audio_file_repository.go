package repositories

import (
	"context"
	"fmt"

	"github.com/blogem/audio-library/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AudioFileRepository handles audio metadata persistence. Every lookup is scoped to the owning account.
type AudioFileRepository interface {
	Create(ctx context.Context, file *models.AudioFile) error
	GetForAccount(ctx context.Context, id, accountID int64) (*models.AudioFile, error)
	GetByPath(ctx context.Context, accountID int64, filePath string) (*models.AudioFile, error)
	ListForAccount(ctx context.Context, accountID int64, categoryID *int64) ([]models.AudioFile, error)
	Update(ctx context.Context, file *models.AudioFile) error
	DeleteForAccount(ctx context.Context, id, accountID int64) error
}

type gormAudioFileRepository struct {
	db *gorm.DB
}

// NewAudioFileRepository creates a new audio file repository
func NewAudioFileRepository(db *gorm.DB) AudioFileRepository {
	return &gormAudioFileRepository{db: db}
}

// Create inserts a metadata row; a reused file path yields ErrDuplicateEntry
func (r *gormAudioFileRepository) Create(ctx context.Context, file *models.AudioFile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(file).Error; err != nil {
		return fmt.Errorf("create audio file %q: %w", file.FilePath, translate(err))
	}
	return nil
}

// GetForAccount returns the file only when accountID owns it
func (r *gormAudioFileRepository) GetForAccount(ctx context.Context, id, accountID int64) (*models.AudioFile, error) {
	var file models.AudioFile
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND account_id = ?", id, accountID).
		First(&file).Error
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// GetByPath finds the row already pointing at a storage key
func (r *gormAudioFileRepository) GetByPath(ctx context.Context, accountID int64, filePath string) (*models.AudioFile, error) {
	var file models.AudioFile
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND file_path = ?", accountID, filePath).
		First(&file).Error
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// ListForAccount returns the account's files newest first, optionally limited to one category
func (r *gormAudioFileRepository) ListForAccount(ctx context.Context, accountID int64, categoryID *int64) ([]models.AudioFile, error) {
	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("account_id = ?", accountID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	files := []models.AudioFile{}
	if err := query.Order("uploaded_at DESC").Order("id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Update stores every mutable column of an existing row
func (r *gormAudioFileRepository) Update(ctx context.Context, file *models.AudioFile) error {
	result := r.db.WithContext(ctx).Model(file).
		Omit(clause.Associations).
		Select("category_id", "file_name", "description", "mime_type", "size_bytes", "uploaded_at").
		Where("account_id = ?", file.AccountID).
		Updates(file)
	if result.Error != nil {
		return fmt.Errorf("update audio file %d: %w", file.ID, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForAccount removes the row only when accountID owns it
func (r *gormAudioFileRepository) DeleteForAccount(ctx context.Context, id, accountID int64) error {
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.AudioFile{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete audio file %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
