package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type CourseFileCount struct {
	CourseID   int64  `json:"course_id" db:"course_id"`
	CourseCode string `json:"course_code" db:"course_code"`
	FileCount  int64  `json:"file_count" db:"file_count"`
}

type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int64  `json:"count" db:"count"`
}

type TermUploadCount struct {
	Year  int    `json:"year" db:"year"`
	Term  string `json:"term" db:"term"`
	Count int64  `json:"count" db:"count"`
}

// Dashboard is the read-side aggregate for the admin overview screen.
type Dashboard struct {
	TotalFiles      int64             `json:"total_files"`
	TotalCourses    int64             `json:"total_courses"`
	PendingRequests int64             `json:"pending_requests"`
	FilesPerCourse  []CourseFileCount `json:"files_per_course"`
	FilesByCategory []CategoryCount   `json:"files_by_category"`
	UploadsPerTerm  []TermUploadCount `json:"uploads_per_term"`
}

func (r *ReportRepository) BuildDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	if err := r.db.GetContext(ctx, &d.TotalFiles,
		`SELECT COUNT(*) FROM exam_files`); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if err := r.db.GetContext(ctx, &d.TotalCourses,
		`SELECT COUNT(*) FROM courses`); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := r.db.GetContext(ctx, &d.PendingRequests,
		`SELECT COUNT(*) FROM delete_requests WHERE status = 'PENDING'`); err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}

	d.FilesPerCourse = []CourseFileCount{}
	perCourse := `
        SELECT c.id AS course_id, c.code AS course_code, COUNT(f.uuid) AS file_count
        FROM courses c
        LEFT JOIN exams e ON e.course_id = c.id
        LEFT JOIN exam_files f ON f.exam_id = e.id
        GROUP BY c.id, c.code
        ORDER BY c.code`
	if err := r.db.SelectContext(ctx, &d.FilesPerCourse, perCourse); err != nil {
		return nil, fmt.Errorf("failed to aggregate files per course: %w", err)
	}

	d.FilesByCategory = []CategoryCount{}
	byCategory := `
        SELECT category, COUNT(*) AS count
        FROM exam_files
        GROUP BY category
        ORDER BY category`
	if err := r.db.SelectContext(ctx, &d.FilesByCategory, byCategory); err != nil {
		return nil, fmt.Errorf("failed to aggregate files by category: %w", err)
	}

	d.UploadsPerTerm = []TermUploadCount{}
	perTerm := `
        SELECT e.year, e.term, COUNT(f.uuid) AS count
        FROM exam_files f
        JOIN exams e ON e.id = f.exam_id
        GROUP BY e.year, e.term
        ORDER BY e.year DESC, e.term`
	if err := r.db.SelectContext(ctx, &d.UploadsPerTerm, perTerm); err != nil {
		return nil, fmt.Errorf("failed to aggregate uploads per term: %w", err)
	}

	return &d, nil
}
