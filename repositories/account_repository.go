package repositories

import (
	"context"
	"fmt"

	"github.com/blogem/audio-library/models"
	"gorm.io/gorm"
)

// AccountRepository handles account persistence
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

type gormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

// Create inserts a new account and sets its ID
func (r *gormAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account %q: %w", account.Username, translate(err))
	}
	return nil
}

func (r *gormAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *gormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *gormAccountRepository) first(ctx context.Context, query string, arg interface{}) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where(query, arg).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// UpdateUsername renames an account; a name held by another account yields ErrDuplicateEntry
func (r *gormAccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	return r.update(ctx, id, "username", username)
}

// UpdatePasswordHash replaces the stored credential hash
func (r *gormAccountRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, id, "password_hash", hash)
}

func (r *gormAccountRepository) update(ctx context.Context, id int64, column string, value string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{ID: id}).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("update account %d %s: %w", id, column, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account; profiles and audio rows cascade, audit rows are detached
func (r *gormAccountRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete account %d: %w", id, translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
