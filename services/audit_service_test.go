package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories/mocks"
)

func TestAuditService_Record(t *testing.T) {
	repo := mocks.NewMockAuditRepository(t)
	service := NewAuditService(repo, zap.NewNop())

	repo.EXPECT().Create(mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
		return *e.AccountID == 1 &&
			e.Action == models.ActionCreate &&
			e.Entity == models.EntityAudioFile &&
			*e.EntityID == 9 &&
			string(e.Details) == `{"categoryId":2,"fileName":"test.mp3"}`
	})).Return(nil)

	service.Record(context.Background(), 1, models.ActionCreate, models.EntityAudioFile, 9,
		map[string]interface{}{"fileName": "test.mp3", "categoryId": 2})
}

func TestAuditService_RecordSwallowsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := mocks.NewMockAuditRepository(t)
	service := NewAuditService(repo, zap.New(core))

	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("disk I/O error"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() {
		service.Record(ctx, 1, models.ActionRead, models.EntityAudioFile, 9, nil)
	})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to write audit log entry", logs.All()[0].Message)
}

func TestAuditService_Recent(t *testing.T) {
	repo := mocks.NewMockAuditRepository(t)
	service := NewAuditService(repo, zap.NewNop())
	ctx := context.Background()

	entries := []models.AuditLogEntry{{ID: 2}, {ID: 1}}
	repo.EXPECT().ListForAccount(ctx, int64(1), RecentActivityLimit).Return(entries, nil)

	got, err := service.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
