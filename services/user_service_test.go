package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/repositories/mocks"
)

// UserServiceTestSuite is a test suite for registration and sign-in
type UserServiceTestSuite struct {
	suite.Suite
	ctx             context.Context
	service         UserService
	mockAccountRepo *mocks.MockAccountRepository
	mockProfileRepo *mocks.MockProfileRepository
	mockAuditRepo   *mocks.MockAuditRepository
}

// SetupTest sets up the test suite before each test
func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockAccountRepo = mocks.NewMockAccountRepository(suite.T())
	suite.mockProfileRepo = mocks.NewMockProfileRepository(suite.T())
	suite.mockAuditRepo = mocks.NewMockAuditRepository(suite.T())
	suite.mockAuditRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Maybe()

	audit := NewAuditService(suite.mockAuditRepo, zap.NewNop())
	suite.service = NewUserService(suite.mockAccountRepo, suite.mockProfileRepo, audit, bcrypt.MinCost, zap.NewNop())
}

// TestRegister_WithProfile tests that a name creates the profile alongside the account
func (suite *UserServiceTestSuite) TestRegister_WithProfile() {
	form := &models.RegisterForm{Username: "alice", Email: "a@x.com", Password: "password1", FirstName: "A", LastName: "L"}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().GetByEmail(suite.ctx, "a@x.com").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().Create(suite.ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Username == "alice" && bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("password1")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 1
	}).Return(nil)
	suite.mockProfileRepo.EXPECT().Create(suite.ctx, mock.MatchedBy(func(p *models.Profile) bool {
		return p.AccountID == 1 && p.FirstName == "A" && p.LastName == "L"
	})).Return(nil)

	user, err := suite.service.Register(suite.ctx, form)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), user.ID)
	require.NotNil(suite.T(), user.Profile)
	assert.Equal(suite.T(), "A", user.Profile.FirstName)
	assert.Equal(suite.T(), "L", user.Profile.LastName)
}

// TestRegister_WithoutProfile tests that no profile row is created without a name
func (suite *UserServiceTestSuite) TestRegister_WithoutProfile() {
	form := &models.RegisterForm{Username: "alice", Email: "a@x.com", Password: "password1"}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().GetByEmail(suite.ctx, "a@x.com").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().Create(suite.ctx, mock.Anything).Return(nil)

	user, err := suite.service.Register(suite.ctx, form)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), user.Profile)
}

// TestRegister_Validation tests the service-level credential rules
func (suite *UserServiceTestSuite) TestRegister_Validation() {
	form := &models.RegisterForm{Username: "al", Email: "not-an-email", Password: "short"}

	_, err := suite.service.Register(suite.ctx, form)

	require.ErrorIs(suite.T(), err, ErrValidation)
	var validationErr *ValidationError
	require.True(suite.T(), errors.As(err, &validationErr))
	assert.Equal(suite.T(), []string{
		"Username must be at least 3 characters long",
		"Valid email address is required",
		"Password must be at least 8 characters long",
	}, validationErr.Messages)
}

// TestRegister_PasswordTooLong tests that bcrypt's input limit is a validation failure
func (suite *UserServiceTestSuite) TestRegister_PasswordTooLong() {
	form := &models.RegisterForm{Username: "alice", Email: "a@x.com", Password: strings.Repeat("p", 80)}

	_, err := suite.service.Register(suite.ctx, form)

	require.ErrorIs(suite.T(), err, ErrValidation)
	assert.EqualError(suite.T(), err, "Password must be at most 72 bytes long")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

// TestRegister_ProfileFailureRemovesAccount tests that a failed profile insert leaves no account behind
func (suite *UserServiceTestSuite) TestRegister_ProfileFailureRemovesAccount() {
	form := &models.RegisterForm{Username: "alice", Email: "a@x.com", Password: "password1", FirstName: "A"}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().GetByEmail(suite.ctx, "a@x.com").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().Create(suite.ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Account).ID = 5
	}).Return(nil)
	suite.mockProfileRepo.EXPECT().Create(suite.ctx, mock.Anything).Return(errors.New("disk I/O error"))
	suite.mockAccountRepo.EXPECT().Delete(mock.Anything, int64(5)).Return(nil)

	_, err := suite.service.Register(suite.ctx, form)

	require.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrValidation)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

// TestHashPassword_TooLong tests the bcrypt limit mapping
func TestHashPassword_TooLong(t *testing.T) {
	_, err := hashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrValidation)

	hash, err := hashPassword(strings.Repeat("x", 72), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, checkPassword(hash, strings.Repeat("x", 72)))
}

// TestRegister_DuplicateEmail tests the named already-exists condition
func (suite *UserServiceTestSuite) TestRegister_DuplicateEmail() {
	form := &models.RegisterForm{Username: "alice2", Email: "a@x.com", Password: "password1"}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice2").Return(nil, repositories.ErrNotFound)
	suite.mockAccountRepo.EXPECT().GetByEmail(suite.ctx, "a@x.com").Return(&models.Account{ID: 1}, nil)

	_, err := suite.service.Register(suite.ctx, form)

	require.ErrorIs(suite.T(), err, ErrAlreadyExists)
	assert.EqualError(suite.T(), err, "Email already exists")
}

// TestRegister_DuplicateUsername tests that the username is checked first
func (suite *UserServiceTestSuite) TestRegister_DuplicateUsername() {
	form := &models.RegisterForm{Username: "alice", Email: "new@x.com", Password: "password1"}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice").Return(&models.Account{ID: 1}, nil)

	_, err := suite.service.Register(suite.ctx, form)

	assert.EqualError(suite.T(), err, "Username already exists")
}

// TestAuthenticate tests credential verification
func (suite *UserServiceTestSuite) TestAuthenticate() {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	account := &models.Account{ID: 1, Username: "alice", PasswordHash: string(hash)}

	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "alice").Return(account, nil)
	suite.mockProfileRepo.EXPECT().GetByAccountID(suite.ctx, int64(1)).Return(nil, repositories.ErrNotFound)

	user, err := suite.service.Authenticate(suite.ctx, "alice", "password1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice", user.Username)

	_, err = suite.service.Authenticate(suite.ctx, "alice", "wrong-password")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

// TestAuthenticate_UnknownUser tests that an unknown name is reported like a bad password
func (suite *UserServiceTestSuite) TestAuthenticate_UnknownUser() {
	suite.mockAccountRepo.EXPECT().GetByUsername(suite.ctx, "ghost").Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Authenticate(suite.ctx, "ghost", "password1")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

// TestUserServiceTestSuite runs the test suite
func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
