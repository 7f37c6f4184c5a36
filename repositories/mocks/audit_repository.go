package mocks

import (
	"context"
	"testing"

	"github.com/blogem/audio-library/models"
	"github.com/stretchr/testify/mock"
)

// MockAuditRepository is a testify mock of repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func NewMockAuditRepository(t *testing.T) *MockAuditRepository {
	m := &MockAuditRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockAuditRepositoryExpecter struct {
	mock *mock.Mock
}

func (m *MockAuditRepository) EXPECT() *MockAuditRepositoryExpecter {
	return &MockAuditRepositoryExpecter{mock: &m.Mock}
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (e *MockAuditRepositoryExpecter) Create(ctx, entry interface{}) *mock.Call {
	return e.mock.On("Create", ctx, entry)
}

func (m *MockAuditRepository) ListForAccount(ctx context.Context, accountID int64, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, accountID, limit)
	var entries []models.AuditLogEntry
	if v := args.Get(0); v != nil {
		entries = v.([]models.AuditLogEntry)
	}
	return entries, args.Error(1)
}

func (e *MockAuditRepositoryExpecter) ListForAccount(ctx, accountID, limit interface{}) *mock.Call {
	return e.mock.On("ListForAccount", ctx, accountID, limit)
}
