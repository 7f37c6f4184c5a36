package mocks

import (
	"context"
	"testing"

	"github.com/blogem/audio-library/models"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a testify mock of repositories.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup
func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockAccountRepositoryExpecter struct {
	mock *mock.Mock
}

func (m *MockAccountRepository) EXPECT() *MockAccountRepositoryExpecter {
	return &MockAccountRepositoryExpecter{mock: &m.Mock}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (e *MockAccountRepositoryExpecter) Create(ctx, account interface{}) *mock.Call {
	return e.mock.On("Create", ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (e *MockAccountRepositoryExpecter) GetByID(ctx, id interface{}) *mock.Call {
	return e.mock.On("GetByID", ctx, id)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (e *MockAccountRepositoryExpecter) GetByUsername(ctx, username interface{}) *mock.Call {
	return e.mock.On("GetByUsername", ctx, username)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	return accountOrNil(args.Get(0)), args.Error(1)
}

func (e *MockAccountRepositoryExpecter) GetByEmail(ctx, email interface{}) *mock.Call {
	return e.mock.On("GetByEmail", ctx, email)
}

func (m *MockAccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	return m.Called(ctx, id, username).Error(0)
}

func (e *MockAccountRepositoryExpecter) UpdateUsername(ctx, id, username interface{}) *mock.Call {
	return e.mock.On("UpdateUsername", ctx, id, username)
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (e *MockAccountRepositoryExpecter) UpdatePasswordHash(ctx, id, hash interface{}) *mock.Call {
	return e.mock.On("UpdatePasswordHash", ctx, id, hash)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (e *MockAccountRepositoryExpecter) Delete(ctx, id interface{}) *mock.Call {
	return e.mock.On("Delete", ctx, id)
}

func accountOrNil(v interface{}) *models.Account {
	if v == nil {
		return nil
	}
	return v.(*models.Account)
}
