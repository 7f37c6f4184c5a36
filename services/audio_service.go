package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blogem/audio-library/metrics"
	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/repositories"
	"github.com/blogem/audio-library/storage"
	"go.uber.org/zap"
)

var (
	allowedMimeTypes = map[string]bool{
		"audio/mpeg":  true,
		"audio/wav":   true,
		"audio/x-wav": true,
		"audio/mp4":   true,
		"audio/m4a":   true,
		"audio/x-m4a": true,
	}
	allowedExtensions = map[string]bool{
		".mp3": true,
		".wav": true,
		".m4a": true,
	}
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// UploadInput is one file of an upload batch
type UploadInput struct {
	File        io.Reader
	FileName    string
	MimeType    string
	SizeBytes   int64 // declared size; the staged byte count is checked as well
	CategoryID  int64
	Description *string
}

// AudioStream is an opened audio file. The caller closes Body.
type AudioStream struct {
	Body     io.ReadCloser
	File     *models.AudioFile
	FileName string
	MimeType string
	Size     int64
	ModTime  time.Time
}

// UploadRecorder receives per-file upload outcomes
type UploadRecorder interface {
	ObserveUpload(result string, bytes int64)
}

// AudioService interface defines upload, retrieval and library management
type AudioService interface {
	Upload(ctx context.Context, accountID int64, inputs []UploadInput) ([]models.AudioFile, error)
	Retrieve(ctx context.Context, id, accountID int64) (*AudioStream, error)
	Update(ctx context.Context, id, accountID int64, update *models.AudioFileUpdate) (*models.AudioFile, error)
	Delete(ctx context.Context, id, accountID int64) (*models.AudioFile, error)
	ListForAccount(ctx context.Context, accountID int64, categoryID *int64) ([]models.AudioFile, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type audioService struct {
	audioRepo    repositories.AudioFileRepository
	categoryRepo repositories.CategoryRepository
	store        storage.Storage
	audit        AuditService
	recorder     UploadRecorder
	maxFileSize  int64
	logger       *zap.Logger
}

// NewAudioService creates a new audio service
func NewAudioService(
	audioRepo repositories.AudioFileRepository,
	categoryRepo repositories.CategoryRepository,
	store storage.Storage,
	audit AuditService,
	recorder UploadRecorder,
	maxFileSize int64,
	logger *zap.Logger,
) AudioService {
	return &audioService{
		audioRepo:    audioRepo,
		categoryRepo: categoryRepo,
		store:        store,
		audit:        audit,
		recorder:     recorder,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

// StorageKey derives the stored name of an upload from its owner and original name.
// Names that sanitize to the same key for one account share a key.
func StorageKey(accountID int64, fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	ext := filepath.Ext(base)
	name := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(base, ext), "_")
	return fmt.Sprintf("%d_%s%s", accountID, name, ext)
}

// PlaybackMimeType is the content type used for inline playback
func PlaybackMimeType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}

func normalizeMimeType(mimeType string) string {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// validateUpload applies the size, type and extension rules in that order
func (s *audioService) validateUpload(in UploadInput) string {
	if in.SizeBytes > s.maxFileSize {
		return fmt.Sprintf("File size exceeds maximum limit of %d bytes", s.maxFileSize)
	}
	if !allowedMimeTypes[normalizeMimeType(in.MimeType)] {
		return fmt.Sprintf("Unsupported file type: %s", in.MimeType)
	}
	if ext := strings.ToLower(filepath.Ext(in.FileName)); !allowedExtensions[ext] {
		return fmt.Sprintf("Unsupported file extension: %s", ext)
	}
	if in.CategoryID <= 0 {
		return fmt.Sprintf("Category is required for file: %s", in.FileName)
	}
	return ""
}

// validateBatch checks every file before any byte is written
func (s *audioService) validateBatch(ctx context.Context, inputs []UploadInput) error {
	if len(inputs) == 0 {
		return NewValidationError("No files provided")
	}

	var problems models.ValidationErrors
	known := map[int64]bool{}
	for _, in := range inputs {
		if msg := s.validateUpload(in); msg != "" {
			problems = append(problems, models.ValidationError{Field: in.FileName, Message: msg})
			continue
		}
		if known[in.CategoryID] {
			continue
		}
		if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("failed to look up category %d: %w", in.CategoryID, err)
			}
			problems = append(problems, models.ValidationError{
				Field:   in.FileName,
				Message: fmt.Sprintf("Category not found for file: %s", in.FileName),
			})
			continue
		}
		known[in.CategoryID] = true
	}

	if problems.HasErrors() {
		for range problems {
			s.recorder.ObserveUpload(metrics.UploadRejected, 0)
		}
		return NewValidationError(problems.GetMessages()...)
	}
	return nil
}

// uploadResult remembers how to undo one stored file of a batch
type uploadResult struct {
	file     *models.AudioFile
	previous *models.AudioFile // row state before an in-place overwrite; nil for new rows
}

// Upload stores a batch. A failure part-way compensates the files already stored in the batch.
func (s *audioService) Upload(ctx context.Context, accountID int64, inputs []UploadInput) ([]models.AudioFile, error) {
	if err := s.validateBatch(ctx, inputs); err != nil {
		return nil, err
	}

	results := make([]uploadResult, 0, len(inputs))
	for _, in := range inputs {
		result, err := s.put(ctx, accountID, in)
		if err != nil {
			s.compensate(ctx, accountID, results)
			return nil, err
		}
		results = append(results, result)
	}

	files := make([]models.AudioFile, len(results))
	for i, r := range results {
		files[i] = *r.file
	}
	return files, nil
}

// put stages the bytes, writes the metadata row, then commits the bytes to their final key
func (s *audioService) put(ctx context.Context, accountID int64, in UploadInput) (uploadResult, error) {
	key := StorageKey(accountID, in.FileName)
	log := s.logger.With(zap.Int64("account_id", accountID), zap.String("file_path", key))

	tempKey, n, err := s.store.Stage(ctx, in.File, s.maxFileSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			s.recorder.ObserveUpload(metrics.UploadRejected, 0)
			return uploadResult{}, NewValidationError(fmt.Sprintf("File size exceeds maximum limit of %d bytes", s.maxFileSize))
		}
		s.recorder.ObserveUpload(metrics.UploadFailed, 0)
		log.Error("failed to stage upload", zap.Error(err))
		return uploadResult{}, fmt.Errorf("failed to store %s: %w", in.FileName, err)
	}

	result, err := s.saveRow(ctx, accountID, key, n, in)
	if err != nil {
		s.recorder.ObserveUpload(metrics.UploadFailed, 0)
		log.Error("failed to save audio metadata", zap.Error(err))
		s.discard(ctx, tempKey, log)
		return uploadResult{}, fmt.Errorf("failed to save %s: %w", in.FileName, err)
	}

	if err := s.store.Commit(ctx, tempKey, key); err != nil {
		s.recorder.ObserveUpload(metrics.UploadFailed, 0)
		log.Error("failed to commit upload", zap.Error(err))
		s.undoRow(ctx, accountID, result, log)
		s.discard(ctx, tempKey, log)
		return uploadResult{}, fmt.Errorf("failed to store %s: %w", in.FileName, err)
	}

	action := models.ActionCreate
	if result.previous != nil {
		action = models.ActionUpdate
	}
	s.audit.Record(ctx, accountID, action, models.EntityAudioFile, result.file.ID,
		map[string]interface{}{"fileName": in.FileName, "categoryId": in.CategoryID})
	s.recorder.ObserveUpload(metrics.UploadAccepted, n)

	log.Info("audio file uploaded", zap.Int64("audio_file_id", result.file.ID), zap.Int64("size_bytes", n))
	return result, nil
}

// saveRow creates the metadata row, or overwrites the row already holding key
func (s *audioService) saveRow(ctx context.Context, accountID int64, key string, size int64, in UploadInput) (uploadResult, error) {
	file := &models.AudioFile{
		AccountID:   accountID,
		CategoryID:  in.CategoryID,
		FileName:    in.FileName,
		FilePath:    key,
		Description: in.Description,
		MimeType:    normalizeMimeType(in.MimeType),
		SizeBytes:   size,
		UploadedAt:  time.Now(),
	}

	existing, err := s.audioRepo.GetByPath(ctx, accountID, key)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		err = s.audioRepo.Create(ctx, file)
		if err == nil {
			return uploadResult{file: file}, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateEntry) {
			return uploadResult{}, err
		}
		// A concurrent upload created the row first; overwrite it instead
		file.ID = 0
		existing, err = s.audioRepo.GetByPath(ctx, accountID, key)
		if err != nil {
			return uploadResult{}, err
		}
	case err != nil:
		return uploadResult{}, err
	}

	previous := *existing
	file.ID = existing.ID
	if err := s.audioRepo.Update(ctx, file); err != nil {
		return uploadResult{}, err
	}
	return uploadResult{file: file, previous: &previous}, nil
}

func (s *audioService) undoRow(ctx context.Context, accountID int64, result uploadResult, log *zap.Logger) {
	var err error
	if result.previous != nil {
		err = s.audioRepo.Update(ctx, result.previous)
	} else {
		err = s.audioRepo.DeleteForAccount(ctx, result.file.ID, accountID)
	}
	if err != nil {
		log.Warn("failed to roll back audio metadata", zap.Int64("audio_file_id", result.file.ID), zap.Error(err))
	}
}

func (s *audioService) discard(ctx context.Context, tempKey string, log *zap.Logger) {
	if err := s.store.Discard(ctx, tempKey); err != nil {
		log.Warn("failed to discard staged upload", zap.String("temp_key", tempKey), zap.Error(err))
	}
}

// compensate removes the new files of a failed batch. Overwritten bytes cannot be restored,
// so rows that replaced an earlier upload are left in place.
func (s *audioService) compensate(ctx context.Context, accountID int64, results []uploadResult) {
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		if r.previous != nil {
			continue
		}
		log := s.logger.With(
			zap.Int64("account_id", accountID),
			zap.Int64("audio_file_id", r.file.ID),
			zap.String("file_path", r.file.FilePath),
		)
		if err := s.audioRepo.DeleteForAccount(ctx, r.file.ID, accountID); err != nil {
			log.Warn("failed to remove audio metadata of failed batch", zap.Error(err))
		}
		if err := s.store.Remove(ctx, r.file.FilePath); err != nil {
			log.Warn("failed to remove audio bytes of failed batch", zap.Error(err))
		}
	}
}

// Retrieve opens an owned file for streaming
func (s *audioService) Retrieve(ctx context.Context, id, accountID int64) (*AudioStream, error) {
	file, err := s.getOwned(ctx, id, accountID)
	if err != nil {
		return nil, err
	}

	body, info, err := s.store.Open(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Error("audio file missing from storage",
				zap.Int64("audio_file_id", id),
				zap.Int64("account_id", accountID),
				zap.String("file_path", file.FilePath),
			)
			return nil, ErrNotFound
		}
		s.logger.Error("failed to open audio file", zap.Int64("audio_file_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	s.audit.Record(ctx, accountID, models.ActionRead, models.EntityAudioFile, id,
		map[string]string{"fileName": file.FileName})

	return &AudioStream{
		Body:     body,
		File:     file,
		FileName: file.FileName,
		MimeType: file.MimeType,
		Size:     info.Size,
		ModTime:  info.ModTime,
	}, nil
}

func (s *audioService) getOwned(ctx context.Context, id, accountID int64) (*models.AudioFile, error) {
	file, err := s.audioRepo.GetForAccount(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get audio file",
			zap.Int64("audio_file_id", id), zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to get audio file: %w", err)
	}
	return file, nil
}

// Update changes the description and/or category of an owned file
func (s *audioService) Update(ctx context.Context, id, accountID int64, update *models.AudioFileUpdate) (*models.AudioFile, error) {
	if messages := update.Validate(); len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	file, err := s.getOwned(ctx, id, accountID)
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{}
	if update.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *update.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, NewValidationError("Category not found")
			}
			return nil, fmt.Errorf("failed to look up category: %w", err)
		}
		file.CategoryID = *update.CategoryID
		details["categoryId"] = *update.CategoryID
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		file.Description = &description
		details["description"] = description
	}

	file.Category = nil
	if err := s.audioRepo.Update(ctx, file); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to update audio file", zap.Int64("audio_file_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update audio file: %w", err)
	}

	s.audit.Record(ctx, accountID, models.ActionUpdate, models.EntityAudioFile, id, details)
	return s.getOwned(ctx, id, accountID)
}

// Delete removes the row, then the bytes. Failing to remove the bytes is logged only.
func (s *audioService) Delete(ctx context.Context, id, accountID int64) (*models.AudioFile, error) {
	file, err := s.getOwned(ctx, id, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.audioRepo.DeleteForAccount(ctx, id, accountID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to delete audio file", zap.Int64("audio_file_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to delete audio file: %w", err)
	}

	if err := s.store.Remove(ctx, file.FilePath); err != nil {
		s.logger.Warn("failed to remove audio bytes",
			zap.Int64("audio_file_id", id),
			zap.String("file_path", file.FilePath),
			zap.Error(err),
		)
	}

	s.audit.Record(ctx, accountID, models.ActionDelete, models.EntityAudioFile, id,
		map[string]string{"fileName": file.FileName})
	return file, nil
}

// ListForAccount returns the account's library newest first
func (s *audioService) ListForAccount(ctx context.Context, accountID int64, categoryID *int64) ([]models.AudioFile, error) {
	files, err := s.audioRepo.ListForAccount(ctx, accountID, categoryID)
	if err != nil {
		s.logger.Error("failed to list audio files", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audio files: %w", err)
	}
	return files, nil
}

func (s *audioService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
