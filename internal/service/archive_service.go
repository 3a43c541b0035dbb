package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
	"paperarchive/internal/service/storage"
)

// ArchiveService streams ZIP exports of the sample PDFs for a course or a
// whole semester.
type ArchiveService struct {
	fileRepo *repository.ExamFileRepository
	store    storage.Store
}

func NewArchiveService(fileRepo *repository.ExamFileRepository, store storage.Store) *ArchiveService {
	return &ArchiveService{fileRepo: fileRepo, store: store}
}

func (s *ArchiveService) ExportCourse(ctx context.Context, courseID int64, w io.Writer) error {
	files, err := s.fileRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.NotFoundError("no files for course %d", courseID)
	}
	return WriteArchive(ctx, s.store, files, w)
}

func (s *ArchiveService) ExportSemester(ctx context.Context, semesterID int64, w io.Writer) error {
	files, err := s.fileRepo.ListBySemester(ctx, semesterID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.NotFoundError("no files for semester %d", semesterID)
	}
	return WriteArchive(ctx, s.store, files, w)
}

// WriteArchive packs the given files into a ZIP stream. Entries are named
// {courseCode}/{examKind}_{category}.pdf.
func WriteArchive(ctx context.Context, store storage.Store, files []domain.ExamFile, w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, file := range files {
		entry, err := zw.Create(ArchiveEntryName(file))
		if err != nil {
			return fmt.Errorf("failed to create archive entry for %s: %w", file.UUID, err)
		}

		data, err := store.Open(ctx, file.StoragePath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file.StoragePath, err)
		}
		_, err = io.Copy(entry, data)
		data.Close()
		if err != nil {
			return fmt.Errorf("failed to write %s into archive: %w", file.UUID, err)
		}
	}

	return zw.Close()
}

func ArchiveEntryName(file domain.ExamFile) string {
	return fmt.Sprintf("%s/%s_%s.pdf", file.CourseCode, file.ExamKind, file.Category)
}
