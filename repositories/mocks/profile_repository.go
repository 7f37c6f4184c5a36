package mocks

import (
	"context"
	"testing"

	"github.com/blogem/audio-library/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a testify mock of repositories.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func NewMockProfileRepository(t *testing.T) *MockProfileRepository {
	m := &MockProfileRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockProfileRepositoryExpecter struct {
	mock *mock.Mock
}

func (m *MockProfileRepository) EXPECT() *MockProfileRepositoryExpecter {
	return &MockProfileRepositoryExpecter{mock: &m.Mock}
}

func (m *MockProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error) {
	args := m.Called(ctx, accountID)
	var profile *models.Profile
	if v := args.Get(0); v != nil {
		profile = v.(*models.Profile)
	}
	return profile, args.Error(1)
}

func (e *MockProfileRepositoryExpecter) GetByAccountID(ctx, accountID interface{}) *mock.Call {
	return e.mock.On("GetByAccountID", ctx, accountID)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (e *MockProfileRepositoryExpecter) Create(ctx, profile interface{}) *mock.Call {
	return e.mock.On("Create", ctx, profile)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (e *MockProfileRepositoryExpecter) Update(ctx, profile interface{}) *mock.Call {
	return e.mock.On("Update", ctx, profile)
}
