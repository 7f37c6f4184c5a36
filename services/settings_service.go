package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/storage"
	"go.uber.org/zap"
)

// SettingsService interface defines account settings business logic
type SettingsService interface {
	ChangeUsername(ctx context.Context, accountID int64, newUsername, password string) error
	ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) error
	GetProfile(ctx context.Context, accountID int64) (*models.ProfileView, error)
	UpdateProfile(ctx context.Context, accountID int64, form *models.ProfileForm) (*models.ProfileView, error)
	DeleteAccount(ctx context.Context, accountID int64, password string) error
}

type settingsService struct {
	accountRepo repositories.AccountRepository
	profileRepo repositories.ProfileRepository
	audioRepo   repositories.AudioFileRepository
	store       storage.Storage
	audit       AuditService
	bcryptCost  int
	logger      *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	repos *repositories.Repositories,
	store storage.Storage,
	audit AuditService,
	bcryptCost int,
	logger *zap.Logger,
) SettingsService {
	return &settingsService{
		accountRepo: repos.Account,
		profileRepo: repos.Profile,
		audioRepo:   repos.AudioFile,
		store:       store,
		audit:       audit,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// verifyPassword loads the account and checks password against its hash
func (s *settingsService) verifyPassword(ctx context.Context, accountID int64, password string, mismatch error) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load account", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !checkPassword(account.PasswordHash, password) {
		return nil, mismatch
	}
	return account, nil
}

// ChangeUsername renames the account after re-verifying its password
func (s *settingsService) ChangeUsername(ctx context.Context, accountID int64, newUsername, password string) error {
	newUsername = strings.TrimSpace(newUsername)

	account, err := s.verifyPassword(ctx, accountID, password, ErrInvalidPassword)
	if err != nil {
		return err
	}

	if len(newUsername) < minUsernameLength {
		return NewValidationError(fmt.Sprintf("Username must be at least %d characters long", minUsernameLength))
	}
	if newUsername == account.Username {
		return nil
	}

	if err := s.accountRepo.UpdateUsername(ctx, accountID, newUsername); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return ErrUsernameTaken
		}
		s.logger.Error("failed to update username", zap.Int64("account_id", accountID), zap.Error(err))
		return fmt.Errorf("failed to update username: %w", err)
	}

	s.audit.Record(ctx, accountID, models.ActionUpdate, models.EntityAccount, accountID,
		map[string][]string{"fields": {"username"}})
	s.logger.Info("username updated", zap.Int64("account_id", accountID))
	return nil
}

// ChangePassword checks the new password's length before verifying the current one
func (s *settingsService) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return NewValidationError(fmt.Sprintf("New password must be at least %d characters long", minPasswordLength))
	}
	if len(newPassword) > maxPasswordLength {
		return NewValidationError(fmt.Sprintf("New password must be at most %d bytes long", maxPasswordLength))
	}

	if _, err := s.verifyPassword(ctx, accountID, currentPassword, ErrCurrentPasswordIncorrect); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.accountRepo.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		s.logger.Error("failed to update password", zap.Int64("account_id", accountID), zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.Record(ctx, accountID, models.ActionUpdate, models.EntityAccount, accountID,
		map[string][]string{"fields": {"password"}})
	s.logger.Info("password updated", zap.Int64("account_id", accountID))
	return nil
}

// GetProfile never fails for a missing profile; both names default to empty
func (s *settingsService) GetProfile(ctx context.Context, accountID int64) (*models.ProfileView, error) {
	profile, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.ProfileView{}, nil
		}
		s.logger.Error("failed to get profile", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &models.ProfileView{FirstName: profile.FirstName, LastName: profile.LastName}, nil
}

// UpdateProfile creates the profile on first use, otherwise updates the supplied fields
func (s *settingsService) UpdateProfile(ctx context.Context, accountID int64, form *models.ProfileForm) (*models.ProfileView, error) {
	if messages := form.Validate(); len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	var fields []string
	if form.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if form.LastName != nil {
		fields = append(fields, "lastName")
	}

	profile, err := s.profileRepo.GetByAccountID(ctx, accountID)
	action := models.ActionUpdate
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		action = models.ActionCreate
		profile = &models.Profile{AccountID: accountID}
	case err != nil:
		s.logger.Error("failed to get profile", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if form.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*form.FirstName)
	}
	if form.LastName != nil {
		profile.LastName = strings.TrimSpace(*form.LastName)
	}

	if action == models.ActionCreate {
		err = s.profileRepo.Create(ctx, profile)
	} else {
		err = s.profileRepo.Update(ctx, profile)
	}
	if err != nil {
		s.logger.Error("failed to save profile", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.audit.Record(ctx, accountID, action, models.EntityProfile, profile.ID, map[string][]string{"fields": fields})
	return &models.ProfileView{FirstName: profile.FirstName, LastName: profile.LastName}, nil
}

// DeleteAccount removes the account and its rows, then the stored bytes of its files
func (s *settingsService) DeleteAccount(ctx context.Context, accountID int64, password string) error {
	if _, err := s.verifyPassword(ctx, accountID, password, ErrInvalidPassword); err != nil {
		return err
	}

	files, err := s.audioRepo.ListForAccount(ctx, accountID, nil)
	if err != nil {
		s.logger.Error("failed to list files for account deletion", zap.Int64("account_id", accountID), zap.Error(err))
		return fmt.Errorf("failed to list audio files: %w", err)
	}

	// Recorded first: the entry's account reference is nulled when the row goes
	s.audit.Record(ctx, accountID, models.ActionDelete, models.EntityAccount, accountID,
		map[string]string{"reason": "User requested account deletion"})

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		s.logger.Error("failed to delete account", zap.Int64("account_id", accountID), zap.Error(err))
		return fmt.Errorf("failed to delete account: %w", err)
	}

	for _, f := range files {
		if err := s.store.Remove(ctx, f.FilePath); err != nil {
			s.logger.Warn("failed to remove audio bytes of deleted account",
				zap.Int64("account_id", accountID),
				zap.Int64("audio_file_id", f.ID),
				zap.String("file_path", f.FilePath),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("account deleted", zap.Int64("account_id", accountID), zap.Int("files", len(files)))
	return nil
}
