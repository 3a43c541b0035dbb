package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type ExamFileRepository struct {
	db *sqlx.DB
}

func NewExamFileRepository(db *sqlx.DB) *ExamFileRepository {
	return &ExamFileRepository{db: db}
}

// Upsert inserts the sample file metadata, replacing a previous sample for
// the same (exam, category) slot. The caller removes the replaced bytes.
func (r *ExamFileRepository) Upsert(ctx context.Context, file *domain.ExamFile) (replacedPath string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old struct {
		UUID        uuid.UUID `db:"uuid"`
		StoragePath string    `db:"storage_path"`
	}
	err = tx.GetContext(ctx, &old,
		`SELECT uuid, storage_path FROM exam_files WHERE exam_id = $1 AND category = $2`,
		file.ExamID, file.Category)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first sample for this slot
	case err != nil:
		return "", fmt.Errorf("failed to check existing sample: %w", err)
	default:
		replacedPath = old.StoragePath
		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_files WHERE uuid = $1`, old.UUID); err != nil {
			return "", fmt.Errorf("failed to replace existing sample: %w", err)
		}
	}

	query := `
        INSERT INTO exam_files (uuid, exam_id, category, name, storage_path, mime_type, size_bytes, uploaded_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		file.UUID,
		file.ExamID,
		file.Category,
		file.Name,
		file.StoragePath,
		file.MIMEType,
		file.SizeBytes,
		file.UploadedBy,
	).Scan(&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert exam file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return replacedPath, nil
}

// FindByUUID returns the file joined with its exam and course for display
// and deep linking, or (nil, nil) when absent.
func (r *ExamFileRepository) FindByUUID(ctx context.Context, id uuid.UUID) (*domain.ExamFile, error) {
	var file domain.ExamFile
	query := `
        SELECT f.*, e.course_id, e.kind AS exam_kind, c.code AS course_code
        FROM exam_files f
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        WHERE f.uuid = $1`

	err := r.db.GetContext(ctx, &file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exam file: %w", err)
	}
	return &file, nil
}

func (r *ExamFileRepository) ListByExam(ctx context.Context, examID int64) ([]domain.ExamFile, error) {
	files := []domain.ExamFile{}
	query := `
        SELECT f.*, e.course_id, e.kind AS exam_kind, c.code AS course_code
        FROM exam_files f
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        WHERE f.exam_id = $1
        ORDER BY f.category`

	if err := r.db.SelectContext(ctx, &files, query, examID); err != nil {
		return nil, fmt.Errorf("failed to list exam files: %w", err)
	}
	return files, nil
}

func (r *ExamFileRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.ExamFile, error) {
	files := []domain.ExamFile{}
	query := `
        SELECT f.*, e.course_id, e.kind AS exam_kind, c.code AS course_code
        FROM exam_files f
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.course_id = $1
        ORDER BY e.year DESC, e.kind, f.category`

	if err := r.db.SelectContext(ctx, &files, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list course files: %w", err)
	}
	return files, nil
}

func (r *ExamFileRepository) ListBySemester(ctx context.Context, semesterID int64) ([]domain.ExamFile, error) {
	files := []domain.ExamFile{}
	query := `
        SELECT f.*, e.course_id, e.kind AS exam_kind, c.code AS course_code
        FROM exam_files f
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.semester_id = $1
        ORDER BY c.code, e.kind, f.category`

	if err := r.db.SelectContext(ctx, &files, query, semesterID); err != nil {
		return nil, fmt.Errorf("failed to list semester files: %w", err)
	}
	return files, nil
}

// ListStoragePaths returns every storage path referenced by metadata.
// Used by the orphan sweep to detect unreferenced physical files.
func (r *ExamFileRepository) ListStoragePaths(ctx context.Context) ([]string, error) {
	paths := []string{}
	if err := r.db.SelectContext(ctx, &paths, `SELECT storage_path FROM exam_files`); err != nil {
		return nil, fmt.Errorf("failed to list storage paths: %w", err)
	}
	return paths, nil
}

// Delete removes the metadata row directly (admin hard delete, outside the
// request/approval workflow).
func (r *ExamFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exam_files WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exam file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("file %s", id)
	}
	return nil
}
