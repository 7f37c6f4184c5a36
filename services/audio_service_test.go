package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/blogem/audio-library/metrics"
	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/repositories/mocks"
	"github.com/blogem/audio-library/storage"
)

const testMaxFileSize = 64

// failingCommitStorage stages normally but never commits
type failingCommitStorage struct {
	*storage.FilesystemStorage
}

func (s failingCommitStorage) Commit(ctx context.Context, tempKey, key string) error {
	return errors.New("disk full")
}

// AudioServiceTestSuite is a test suite for the upload and retrieval pipeline
type AudioServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	service          AudioService
	store            *storage.FilesystemStorage
	uploadDir        string
	mockAudioRepo    *mocks.MockAudioFileRepository
	mockCategoryRepo *mocks.MockCategoryRepository
	mockAuditRepo    *mocks.MockAuditRepository
}

// SetupTest sets up the test suite before each test
func (suite *AudioServiceTestSuite) SetupTest() {
	t := suite.T()
	suite.ctx = context.Background()

	suite.uploadDir = filepath.Join(t.TempDir(), "uploads")
	store, err := storage.NewFilesystemStorage(suite.uploadDir)
	require.NoError(t, err)
	suite.store = store

	suite.mockAudioRepo = mocks.NewMockAudioFileRepository(t)
	suite.mockCategoryRepo = mocks.NewMockCategoryRepository(t)
	suite.mockAuditRepo = mocks.NewMockAuditRepository(t)
	suite.mockAuditRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Maybe()

	suite.service = suite.newService(store)
}

func (suite *AudioServiceTestSuite) newService(store storage.Storage) AudioService {
	audit := NewAuditService(suite.mockAuditRepo, zap.NewNop())
	return NewAudioService(suite.mockAudioRepo, suite.mockCategoryRepo, store, audit, metrics.New(), testMaxFileSize, zap.NewNop())
}

func (suite *AudioServiceTestSuite) uploadDirEntries() []string {
	entries, err := os.ReadDir(suite.uploadDir)
	require.NoError(suite.T(), err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func mp3(name, content string) UploadInput {
	return UploadInput{
		File:       strings.NewReader(content),
		FileName:   name,
		MimeType:   "audio/mpeg",
		SizeBytes:  int64(len(content)),
		CategoryID: 2,
	}
}

// TestUpload_RejectsBeforeWriting tests that invalid files never reach storage
func (suite *AudioServiceTestSuite) TestUpload_RejectsBeforeWriting() {
	tests := []struct {
		name    string
		input   UploadInput
		message string
	}{
		{
			name:    "declared size over limit",
			input:   UploadInput{File: strings.NewReader("x"), FileName: "a.mp3", MimeType: "audio/mpeg", SizeBytes: testMaxFileSize + 1, CategoryID: 2},
			message: "File size exceeds maximum limit of 64 bytes",
		},
		{
			name:    "mime type not allowed",
			input:   UploadInput{File: strings.NewReader("x"), FileName: "a.mp3", MimeType: "video/mp4", SizeBytes: 1, CategoryID: 2},
			message: "Unsupported file type: video/mp4",
		},
		{
			name:    "extension not allowed",
			input:   UploadInput{File: strings.NewReader("x"), FileName: "a.ogg", MimeType: "audio/mpeg", SizeBytes: 1, CategoryID: 2},
			message: "Unsupported file extension: .ogg",
		},
		{
			name:    "missing category",
			input:   UploadInput{File: strings.NewReader("x"), FileName: "a.mp3", MimeType: "audio/mpeg", SizeBytes: 1},
			message: "Category is required for file: a.mp3",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.Upload(suite.ctx, 1, []UploadInput{tt.input})

			require.ErrorIs(suite.T(), err, ErrValidation)
			assert.EqualError(suite.T(), err, tt.message)
			assert.Empty(suite.T(), suite.uploadDirEntries())
		})
	}
}

// TestUpload_UnknownCategory tests that the category must exist
func (suite *AudioServiceTestSuite) TestUpload_UnknownCategory() {
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Upload(suite.ctx, 1, []UploadInput{mp3("test.mp3", "0123456789")})

	assert.ErrorIs(suite.T(), err, ErrValidation)
	assert.Empty(suite.T(), suite.uploadDirEntries())
}

// TestUpload_ActualSizeOverLimit tests that an understated size is caught while staging
func (suite *AudioServiceTestSuite) TestUpload_ActualSizeOverLimit() {
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil)
	input := mp3("big.mp3", strings.Repeat("x", testMaxFileSize+1))
	input.SizeBytes = 1

	_, err := suite.service.Upload(suite.ctx, 1, []UploadInput{input})

	assert.ErrorIs(suite.T(), err, ErrValidation)
	assert.Empty(suite.T(), suite.uploadDirEntries())
}

// TestUpload_Success tests the stage, row, commit sequence
func (suite *AudioServiceTestSuite) TestUpload_Success() {
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil)
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), "1_my_song.mp3").Return(nil, repositories.ErrNotFound)
	suite.mockAudioRepo.EXPECT().Create(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.FilePath == "1_my_song.mp3" && f.SizeBytes == 10 && f.FileName == "my song.mp3"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.AudioFile).ID = 9
	}).Return(nil)

	files, err := suite.service.Upload(suite.ctx, 1, []UploadInput{mp3("my song.mp3", "0123456789")})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), files, 1)
	assert.Equal(suite.T(), int64(9), files[0].ID)
	assert.Equal(suite.T(), int64(10), files[0].SizeBytes)
	assert.Equal(suite.T(), []string{"1_my_song.mp3"}, suite.uploadDirEntries())
}

// TestUpload_SameKeyOverwrites tests that a second upload reuses the existing row
func (suite *AudioServiceTestSuite) TestUpload_SameKeyOverwrites() {
	existing := &models.AudioFile{ID: 4, AccountID: 1, FilePath: "1_test.mp3", SizeBytes: 3}
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil)
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), "1_test.mp3").Return(existing, nil)
	suite.mockAudioRepo.EXPECT().Update(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.ID == 4 && f.SizeBytes == 5
	})).Return(nil)

	files, err := suite.service.Upload(suite.ctx, 1, []UploadInput{mp3("test.mp3", "fresh")})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), files[0].ID)
}

// TestUpload_ConcurrentCreateFallsBackToOverwrite tests losing the insert race on the same key
func (suite *AudioServiceTestSuite) TestUpload_ConcurrentCreateFallsBackToOverwrite() {
	winner := &models.AudioFile{ID: 6, AccountID: 1, FilePath: "1_test.mp3", SizeBytes: 3}
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil)
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), "1_test.mp3").Return(nil, repositories.ErrNotFound).Once()
	suite.mockAudioRepo.EXPECT().Create(suite.ctx, mock.Anything).Return(repositories.ErrDuplicateEntry)
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), "1_test.mp3").Return(winner, nil).Once()
	suite.mockAudioRepo.EXPECT().Update(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.ID == 6 && f.SizeBytes == 5
	})).Return(nil)

	files, err := suite.service.Upload(suite.ctx, 1, []UploadInput{mp3("test.mp3", "fresh")})

	require.NoError(suite.T(), err)
	require.Len(suite.T(), files, 1)
	assert.Equal(suite.T(), int64(6), files[0].ID)
	assert.Equal(suite.T(), []string{"1_test.mp3"}, suite.uploadDirEntries())
}

// TestUpload_BatchFailureCompensates tests that earlier files of a failed batch are removed
func (suite *AudioServiceTestSuite) TestUpload_BatchFailureCompensates() {
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil).Once()
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), mock.Anything).Return(nil, repositories.ErrNotFound)
	suite.mockAudioRepo.EXPECT().Create(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.FilePath == "1_one.mp3"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.AudioFile).ID = 1
	}).Return(nil)
	suite.mockAudioRepo.EXPECT().Create(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.FilePath == "1_two.mp3"
	})).Return(errors.New("database is locked"))
	suite.mockAudioRepo.EXPECT().DeleteForAccount(suite.ctx, int64(1), int64(1)).Return(nil)

	_, err := suite.service.Upload(suite.ctx, 1, []UploadInput{mp3("one.mp3", "1111"), mp3("two.mp3", "2222")})

	require.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrValidation)
	assert.Empty(suite.T(), suite.uploadDirEntries())
}

// TestUpload_CommitFailureRemovesRow tests the rollback when the final rename fails
func (suite *AudioServiceTestSuite) TestUpload_CommitFailureRemovesRow() {
	service := suite.newService(failingCommitStorage{suite.store})
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(2)).Return(&models.Category{ID: 2}, nil)
	suite.mockAudioRepo.EXPECT().GetByPath(suite.ctx, int64(1), "1_test.mp3").Return(nil, repositories.ErrNotFound)
	suite.mockAudioRepo.EXPECT().Create(suite.ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.AudioFile).ID = 3
	}).Return(nil)
	suite.mockAudioRepo.EXPECT().DeleteForAccount(suite.ctx, int64(3), int64(1)).Return(nil)

	_, err := service.Upload(suite.ctx, 1, []UploadInput{mp3("test.mp3", "0123456789")})

	require.Error(suite.T(), err)
	assert.Empty(suite.T(), suite.uploadDirEntries())
}

// TestRetrieve tests byte-identical retrieval by the owner
func (suite *AudioServiceTestSuite) TestRetrieve() {
	tempKey, _, err := suite.store.Stage(suite.ctx, strings.NewReader("0123456789"), 100)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.store.Commit(suite.ctx, tempKey, "1_test.mp3"))

	file := &models.AudioFile{ID: 9, AccountID: 1, FileName: "test.mp3", FilePath: "1_test.mp3", MimeType: "audio/mpeg"}
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(1)).Return(file, nil)

	stream, err := suite.service.Retrieve(suite.ctx, 9, 1)
	require.NoError(suite.T(), err)
	defer stream.Body.Close()

	data, err := io.ReadAll(stream.Body)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0123456789", string(data))
	assert.Equal(suite.T(), "test.mp3", stream.FileName)
	assert.Equal(suite.T(), int64(10), stream.Size)
}

// TestRetrieve_NotOwned tests that another account sees not found
func (suite *AudioServiceTestSuite) TestRetrieve_NotOwned() {
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(2)).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Retrieve(suite.ctx, 9, 2)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// TestRetrieve_MissingBytes tests that a row without bytes is reported as not found
func (suite *AudioServiceTestSuite) TestRetrieve_MissingBytes() {
	file := &models.AudioFile{ID: 9, AccountID: 1, FilePath: "1_gone.mp3"}
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(1)).Return(file, nil)

	_, err := suite.service.Retrieve(suite.ctx, 9, 1)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// TestDelete_MissingBytesStillSucceeds tests that the row removal is authoritative
func (suite *AudioServiceTestSuite) TestDelete_MissingBytesStillSucceeds() {
	file := &models.AudioFile{ID: 9, AccountID: 1, FileName: "gone.mp3", FilePath: "1_gone.mp3"}
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(1)).Return(file, nil)
	suite.mockAudioRepo.EXPECT().DeleteForAccount(suite.ctx, int64(9), int64(1)).Return(nil)

	deleted, err := suite.service.Delete(suite.ctx, 9, 1)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "gone.mp3", deleted.FileName)
}

// TestUpdate tests description and category changes
func (suite *AudioServiceTestSuite) TestUpdate() {
	category := int64(3)
	description := " live take "
	file := &models.AudioFile{ID: 9, AccountID: 1, CategoryID: 2}
	updated := &models.AudioFile{ID: 9, AccountID: 1, CategoryID: 3}

	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(1)).Return(file, nil).Once()
	suite.mockCategoryRepo.EXPECT().GetByID(suite.ctx, int64(3)).Return(&models.Category{ID: 3}, nil)
	suite.mockAudioRepo.EXPECT().Update(suite.ctx, mock.MatchedBy(func(f *models.AudioFile) bool {
		return f.CategoryID == 3 && f.Description != nil && *f.Description == "live take"
	})).Return(nil)
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(1)).Return(updated, nil).Once()

	result, err := suite.service.Update(suite.ctx, 9, 1, &models.AudioFileUpdate{Description: &description, CategoryID: &category})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), result.CategoryID)
}

// TestUpdate_NotOwned tests that updates of another account's file are not found
func (suite *AudioServiceTestSuite) TestUpdate_NotOwned() {
	description := "x"
	suite.mockAudioRepo.EXPECT().GetForAccount(suite.ctx, int64(9), int64(2)).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.Update(suite.ctx, 9, 2, &models.AudioFileUpdate{Description: &description})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// TestAudioServiceTestSuite runs the test suite
func TestAudioServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AudioServiceTestSuite))
}

func TestStorageKey(t *testing.T) {
	tests := map[string]string{
		"test.mp3":          "7_test.mp3",
		"my song (1).wav":   "7_my_song__1_.wav",
		"../../etc/x.m4a":   "7_x.m4a",
		`C:\music\tune.mp3`: "7_tune.mp3",
		"ünïcode-ok_1.mp3":  "7__n_code-ok_1.mp3",
	}
	for in, want := range tests {
		assert.Equal(t, want, StorageKey(7, in), in)
	}
}

func TestPlaybackMimeType(t *testing.T) {
	assert.Equal(t, "audio/wav", PlaybackMimeType("a.WAV"))
	assert.Equal(t, "audio/mp4", PlaybackMimeType("a.m4a"))
	assert.Equal(t, "audio/mpeg", PlaybackMimeType("a.mp3"))
}
