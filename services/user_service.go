package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"go.uber.org/zap"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService interface defines registration and sign-in
type UserService interface {
	Register(ctx context.Context, form *models.RegisterForm) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUser(ctx context.Context, accountID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type userService struct {
	accountRepo repositories.AccountRepository
	profileRepo repositories.ProfileRepository
	audit       AuditService
	bcryptCost  int
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	accountRepo repositories.AccountRepository,
	profileRepo repositories.ProfileRepository,
	audit AuditService,
	bcryptCost int,
	logger *zap.Logger,
) UserService {
	return &userService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		audit:       audit,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Register creates an account and, when a name was supplied, its profile
func (s *userService) Register(ctx context.Context, form *models.RegisterForm) (*models.User, error) {
	username := strings.TrimSpace(form.Username)
	email := strings.TrimSpace(form.Email)

	if messages := validateCredentials(username, email, form.Password); len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(form.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Username: username, Email: email, PasswordHash: hash}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, &AlreadyExistsError{Field: "Account"}
		}
		s.logger.Error("failed to create account", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	var profile *models.Profile
	if form.FirstName != "" || form.LastName != "" {
		profile = &models.Profile{AccountID: account.ID, FirstName: form.FirstName, LastName: form.LastName}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			s.logger.Error("failed to create profile", zap.Int64("account_id", account.ID), zap.Error(err))
			// Roll back the account insert
			if delErr := s.accountRepo.Delete(context.WithoutCancel(ctx), account.ID); delErr != nil {
				s.logger.Error("failed to remove account after profile failure",
					zap.Int64("account_id", account.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	s.audit.Record(ctx, account.ID, models.ActionCreate, models.EntityAccount, account.ID,
		map[string]string{"username": username, "email": email})
	if profile != nil {
		s.audit.Record(ctx, account.ID, models.ActionCreate, models.EntityProfile, profile.ID,
			map[string][]string{"fields": {"firstName", "lastName"}})
	}

	s.logger.Info("user registered", zap.Int64("account_id", account.ID), zap.String("username", username))
	return models.NewUser(account, profile), nil
}

func validateCredentials(username, email, password string) []string {
	var messages []string

	if len(username) < minUsernameLength {
		messages = append(messages, fmt.Sprintf("Username must be at least %d characters long", minUsernameLength))
	}
	if !emailPattern.MatchString(email) {
		messages = append(messages, "Valid email address is required")
	}
	if len(password) < minPasswordLength {
		messages = append(messages, fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		messages = append(messages, fmt.Sprintf("Password must be at most %d bytes long", maxPasswordLength))
	}

	return messages
}

// checkAvailable reports which of username and email is already registered
func (s *userService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.accountRepo.GetByUsername(ctx, username); err == nil {
		return &AlreadyExistsError{Field: "Username"}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.accountRepo.GetByEmail(ctx, email); err == nil {
		return &AlreadyExistsError{Field: "Email"}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}

// Authenticate verifies a username and password pair
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	account, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !checkPassword(account.PasswordHash, password) {
		s.logger.Info("failed sign-in", zap.Int64("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}

	return s.compose(ctx, account)
}

// GetUser returns the account with its profile
func (s *userService) GetUser(ctx context.Context, accountID int64) (*models.User, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	return s.compose(ctx, account)
}

// GetUserByEmail links an external identity to an existing account
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return s.compose(ctx, account)
}

func (s *userService) compose(ctx context.Context, account *models.Account) (*models.User, error) {
	profile, err := s.profileRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		profile = nil
	}
	return models.NewUser(account, profile), nil
}
