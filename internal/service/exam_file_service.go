package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"paperarchive/internal/domain"
	"paperarchive/internal/repository"
	"paperarchive/internal/service/storage"
)

// ExamFileService handles upload, download and hard deletion of sample exam
// PDFs. Soft deletion goes through the delete-request workflow instead.
type ExamFileService struct {
	fileRepo   *repository.ExamFileRepository
	courseRepo *repository.CourseRepository
	store      storage.Store
	audit      *repository.AuditRepository
	maxBytes   int64
}

func NewExamFileService(
	fileRepo *repository.ExamFileRepository,
	courseRepo *repository.CourseRepository,
	store storage.Store,
	audit *repository.AuditRepository,
	maxUploadMB int64,
) *ExamFileService {
	return &ExamFileService{
		fileRepo:   fileRepo,
		courseRepo: courseRepo,
		store:      store,
		audit:      audit,
		maxBytes:   maxUploadMB << 20,
	}
}

type Upload struct {
	ExamID   int64
	Category domain.SampleCategory
	Filename string
	MIMEType string
	Size     int64
	Data     io.Reader
}

// StoragePathFor builds the storage key for a sample file.
func StoragePathFor(examID int64, fileUUID uuid.UUID) string {
	return fmt.Sprintf("exams/%d/%s.pdf", examID, fileUUID)
}

// Upload stores a sample PDF for an exam slot, replacing any previous sample
// in the same (exam, category) slot.
func (s *ExamFileService) Upload(ctx context.Context, actor domain.Actor, up Upload) (*domain.ExamFile, error) {
	if !domain.ValidSampleCategory(up.Category) {
		return nil, domain.ValidationError("unknown sample category %q", up.Category)
	}
	if err := domain.ValidateUpload(up.Filename, up.MIMEType, up.Size, s.maxBytes); err != nil {
		return nil, err
	}

	exam, err := s.courseRepo.FindExamByID(ctx, up.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, domain.NotFoundError("exam %d", up.ExamID)
	}

	file := &domain.ExamFile{
		UUID:       uuid.New(),
		ExamID:     up.ExamID,
		Category:   up.Category,
		Name:       up.Filename,
		MIMEType:   "application/pdf",
		SizeBytes:  up.Size,
		UploadedBy: actor.ID,
	}
	file.StoragePath = StoragePathFor(up.ExamID, file.UUID)

	written, err := s.store.Save(ctx, file.StoragePath, up.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	file.SizeBytes = written

	replacedPath, err := s.fileRepo.Upsert(ctx, file)
	if err != nil {
		// Metadata failed; do not leave the fresh bytes orphaned.
		if rmErr := s.store.Remove(ctx, file.StoragePath); rmErr != nil {
			log.Printf("warning: failed to clean up %s after metadata failure: %v", file.StoragePath, rmErr)
		}
		return nil, err
	}

	if replacedPath != "" && replacedPath != file.StoragePath {
		if err := s.store.Remove(ctx, replacedPath); err != nil {
			log.Printf("warning: failed to remove replaced sample %s: %v", replacedPath, err)
		}
	}

	file.CourseID = exam.CourseID
	file.CourseCode = exam.CourseCode
	file.ExamKind = string(exam.Kind)
	return file, nil
}

type Download struct {
	File *domain.ExamFile
	Data io.ReadCloser
}

func (s *ExamFileService) Download(ctx context.Context, fileUUID uuid.UUID) (*Download, error) {
	file, err := s.fileRepo.FindByUUID(ctx, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, domain.NotFoundError("file %s", fileUUID)
	}

	data, err := s.store.Open(ctx, file.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileUUID, err)
	}
	return &Download{File: file, Data: data}, nil
}

func (s *ExamFileService) Get(ctx context.Context, fileUUID uuid.UUID) (*domain.ExamFile, error) {
	file, err := s.fileRepo.FindByUUID(ctx, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, domain.NotFoundError("file %s", fileUUID)
	}
	return file, nil
}

func (s *ExamFileService) ListByExam(ctx context.Context, examID int64) ([]domain.ExamFile, error) {
	return s.fileRepo.ListByExam(ctx, examID)
}

func (s *ExamFileService) ListByCourse(ctx context.Context, courseID int64) ([]domain.ExamFile, error) {
	return s.fileRepo.ListByCourse(ctx, courseID)
}

// HardDelete removes a file and its metadata immediately, bypassing the
// approval workflow. Admin only; audited.
func (s *ExamFileService) HardDelete(ctx context.Context, actor domain.Actor, fileUUID uuid.UUID) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}

	file, err := s.fileRepo.FindByUUID(ctx, fileUUID)
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return domain.NotFoundError("file %s", fileUUID)
	}

	if err := s.fileRepo.Delete(ctx, fileUUID); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, file.StoragePath); err != nil {
		log.Printf("warning: failed to remove %s from storage: %v", file.StoragePath, err)
	}

	rec := &domain.AuditRecord{
		ActorID:    actor.ID,
		Action:     domain.AuditFileHardDeleted,
		FileName:   file.Name,
		CourseCode: file.CourseCode,
	}
	if err := s.audit.Record(ctx, rec); err != nil {
		log.Printf("warning: failed to write audit record for file %s: %v", fileUUID, err)
	}
	return nil
}
