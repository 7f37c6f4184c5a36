package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const stagingSuffix = ".part"

// FilesystemStorage stores files on local disk
type FilesystemStorage struct {
	basePath string
}

// NewFilesystemStorage creates the upload directory if needed
func NewFilesystemStorage(basePath string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", basePath, err)
	}
	return &FilesystemStorage{basePath: basePath}, nil
}

// path resolves key inside the base directory; keys are single path elements
func (s *FilesystemStorage) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.basePath, key), nil
}

func (s *FilesystemStorage) Stage(ctx context.Context, r io.Reader, limit int64) (string, int64, error) {
	tempKey := "." + uuid.NewString() + stagingSuffix
	path, err := s.path(tempKey)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create staging file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err == nil && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", n, err
		}
		return "", n, fmt.Errorf("failed to write staging file: %w", err)
	}

	return tempKey, n, nil
}

// Commit renames the staged file over key
func (s *FilesystemStorage) Commit(ctx context.Context, tempKey, key string) error {
	from, err := s.path(tempKey)
	if err != nil {
		return err
	}
	to, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Rename(from, to); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (s *FilesystemStorage) Discard(ctx context.Context, tempKey string) error {
	path, err := s.path(tempKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to discard %s: %w", tempKey, err)
	}
	return nil
}

// Open returns an *os.File, which is seekable
func (s *FilesystemStorage) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("failed to open %s: %w", key, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	return f, ObjectInfo{Size: stat.Size(), ModTime: stat.ModTime()}, nil
}

func (s *FilesystemStorage) Remove(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
