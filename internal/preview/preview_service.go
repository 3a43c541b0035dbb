// Package preview renders first-page JPEG thumbnails of sample exam PDFs.
// Thumbnails are generated lazily, cached in the file store under previews/
// and cleaned up by the maintenance sweep when their source disappears.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/bimg"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
	"paperarchive/internal/service/storage"
)

const (
	maxPreviewSize = 1024 // longest edge in pixels
	jpegQuality    = 85
)

type Service struct {
	fileRepo *repository.ExamFileRepository
	store    storage.Store
}

func NewService(fileRepo *repository.ExamFileRepository, store storage.Store) *Service {
	return &Service{fileRepo: fileRepo, store: store}
}

// previewPathFor mirrors the sample's storage path under previews/ so the
// sweep can match a thumbnail to its source.
func previewPathFor(storagePath string) string {
	return "previews/" + strings.TrimSuffix(strings.TrimPrefix(storagePath, "exams/"), ".pdf") + ".jpg"
}

// Get returns the cached thumbnail for a file, generating it on first use.
func (s *Service) Get(ctx context.Context, fileUUID uuid.UUID) (io.ReadCloser, error) {
	file, err := s.fileRepo.FindByUUID(ctx, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, domain.NotFoundError("file %s", fileUUID)
	}

	previewPath := previewPathFor(file.StoragePath)
	if s.store.Exists(ctx, previewPath) {
		return s.store.Open(ctx, previewPath)
	}

	thumbnail, err := s.generate(ctx, file.StoragePath)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Save(ctx, previewPath, bytes.NewReader(thumbnail)); err != nil {
		return nil, fmt.Errorf("failed to cache preview: %w", err)
	}
	return io.NopCloser(bytes.NewReader(thumbnail)), nil
}

// generate renders the first PDF page and scales it down to a JPEG.
func (s *Service) generate(ctx context.Context, storagePath string) ([]byte, error) {
	src, err := s.store.Open(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source PDF: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source PDF: %w", err)
	}

	thumbnail, err := bimg.NewImage(data).Process(bimg.Options{
		Type:    bimg.JPEG,
		Width:   maxPreviewSize,
		Quality: jpegQuality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	return thumbnail, nil
}
