package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Harin-6044/Resume-Shortlister/internal/config"
)

var ErrFileNotFound = errors.New("stored file not found")

// StorageService keeps uploaded resumes until a session has been processed.
type StorageService interface {
	EnsureReady(ctx context.Context) error
	Save(ctx context.Context, fileType, originalName string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewStorageService picks the backend named in the config.
func NewStorageService(ctx context.Context, cfg config.StorageConfig) (StorageService, error) {
	switch cfg.Backend {
	case config.StorageBackendS3:
		return NewS3StorageService(ctx, cfg.S3)
	case config.StorageBackendLocal, "":
		return NewLocalStorageService(cfg.UploadPath), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// storageKey validates the extension and builds "<fileType>_<uuid><ext>".
func storageKey(fileType, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".pdf" && ext != ".docx" {
		return "", fmt.Errorf("invalid file extension %q: %w", ext, ErrUnsupportedFormat)
	}
	return fmt.Sprintf("%s_%s%s", fileType, uuid.New().String(), ext), nil
}

type localStorageService struct {
	uploadPath string
}

func NewLocalStorageService(uploadPath string) StorageService {
	return &localStorageService{
		uploadPath: uploadPath,
	}
}

func (s *localStorageService) EnsureReady(_ context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *localStorageService) Save(_ context.Context, fileType, originalName string, data []byte) (string, error) {
	key, err := storageKey(fileType, originalName)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

func (s *localStorageService) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localStorageService) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path keeps keys inside the upload directory.
func (s *localStorageService) path(key string) string {
	return filepath.Join(s.uploadPath, filepath.Base(key))
}
