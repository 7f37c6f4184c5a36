package mocks

import (
	"context"
	"testing"

	"github.com/blogem/audio-library/models"
	"github.com/stretchr/testify/mock"
)

// MockAudioFileRepository is a testify mock of repositories.AudioFileRepository
type MockAudioFileRepository struct {
	mock.Mock
}

func NewMockAudioFileRepository(t *testing.T) *MockAudioFileRepository {
	m := &MockAudioFileRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockAudioFileRepositoryExpecter struct {
	mock *mock.Mock
}

func (m *MockAudioFileRepository) EXPECT() *MockAudioFileRepositoryExpecter {
	return &MockAudioFileRepositoryExpecter{mock: &m.Mock}
}

func (m *MockAudioFileRepository) Create(ctx context.Context, file *models.AudioFile) error {
	return m.Called(ctx, file).Error(0)
}

func (e *MockAudioFileRepositoryExpecter) Create(ctx, file interface{}) *mock.Call {
	return e.mock.On("Create", ctx, file)
}

func (m *MockAudioFileRepository) GetForAccount(ctx context.Context, id, accountID int64) (*models.AudioFile, error) {
	args := m.Called(ctx, id, accountID)
	return audioFileOrNil(args.Get(0)), args.Error(1)
}

func (e *MockAudioFileRepositoryExpecter) GetForAccount(ctx, id, accountID interface{}) *mock.Call {
	return e.mock.On("GetForAccount", ctx, id, accountID)
}

func (m *MockAudioFileRepository) GetByPath(ctx context.Context, accountID int64, filePath string) (*models.AudioFile, error) {
	args := m.Called(ctx, accountID, filePath)
	return audioFileOrNil(args.Get(0)), args.Error(1)
}

func (e *MockAudioFileRepositoryExpecter) GetByPath(ctx, accountID, filePath interface{}) *mock.Call {
	return e.mock.On("GetByPath", ctx, accountID, filePath)
}

func (m *MockAudioFileRepository) ListForAccount(ctx context.Context, accountID int64, categoryID *int64) ([]models.AudioFile, error) {
	args := m.Called(ctx, accountID, categoryID)
	var files []models.AudioFile
	if v := args.Get(0); v != nil {
		files = v.([]models.AudioFile)
	}
	return files, args.Error(1)
}

func (e *MockAudioFileRepositoryExpecter) ListForAccount(ctx, accountID, categoryID interface{}) *mock.Call {
	return e.mock.On("ListForAccount", ctx, accountID, categoryID)
}

func (m *MockAudioFileRepository) Update(ctx context.Context, file *models.AudioFile) error {
	return m.Called(ctx, file).Error(0)
}

func (e *MockAudioFileRepositoryExpecter) Update(ctx, file interface{}) *mock.Call {
	return e.mock.On("Update", ctx, file)
}

func (m *MockAudioFileRepository) DeleteForAccount(ctx context.Context, id, accountID int64) error {
	return m.Called(ctx, id, accountID).Error(0)
}

func (e *MockAudioFileRepositoryExpecter) DeleteForAccount(ctx, id, accountID interface{}) *mock.Call {
	return e.mock.On("DeleteForAccount", ctx, id, accountID)
}

func audioFileOrNil(v interface{}) *models.AudioFile {
	if v == nil {
		return nil
	}
	return v.(*models.AudioFile)
}
