package mocks

import (
	"context"
	"testing"

	"github.com/blogem/audio-library/models"
	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository is a testify mock of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func NewMockCategoryRepository(t *testing.T) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockCategoryRepositoryExpecter struct {
	mock *mock.Mock
}

func (m *MockCategoryRepository) EXPECT() *MockCategoryRepositoryExpecter {
	return &MockCategoryRepositoryExpecter{mock: &m.Mock}
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	var categories []models.Category
	if v := args.Get(0); v != nil {
		categories = v.([]models.Category)
	}
	return categories, args.Error(1)
}

func (e *MockCategoryRepositoryExpecter) GetAll(ctx interface{}) *mock.Call {
	return e.mock.On("GetAll", ctx)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	var category *models.Category
	if v := args.Get(0); v != nil {
		category = v.(*models.Category)
	}
	return category, args.Error(1)
}

func (e *MockCategoryRepositoryExpecter) GetByID(ctx, id interface{}) *mock.Call {
	return e.mock.On("GetByID", ctx, id)
}
