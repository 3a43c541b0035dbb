package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
        INSERT INTO courses (code, name, department, credits)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		course.Code,
		course.Name,
		course.Department,
		course.Credits,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*domain.Course, error) {
	var course domain.Course
	err := r.db.GetContext(ctx, &course, `SELECT * FROM courses WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	courses := []domain.Course{}
	query := `SELECT * FROM courses ORDER BY code`

	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) error {
	query := `
        UPDATE courses
        SET code = $2, name = $3, department = $4, credits = $5, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		course.ID,
		course.Code,
		course.Name,
		course.Department,
		course.Credits,
	).Scan(&course.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("course %d", course.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("course %d", id)
	}
	return nil
}

func (r *CourseRepository) CreateExam(ctx context.Context, exam *domain.Exam) error {
	query := `
        INSERT INTO exams (course_id, semester_id, kind, year, term)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		exam.CourseID,
		exam.SemesterID,
		exam.Kind,
		exam.Year,
		exam.Term,
	).Scan(&exam.ID, &exam.CreatedAt, &exam.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindExamByID(ctx context.Context, id int64) (*domain.Exam, error) {
	var exam domain.Exam
	query := `
        SELECT e.*, c.code AS course_code, c.name AS course_name
        FROM exams e
        JOIN courses c ON c.id = e.course_id
        WHERE e.id = $1`

	err := r.db.GetContext(ctx, &exam, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exam: %w", err)
	}
	return &exam, nil
}

func (r *CourseRepository) ListExamsByCourse(ctx context.Context, courseID int64) ([]domain.Exam, error) {
	exams := []domain.Exam{}
	query := `
        SELECT e.*, c.code AS course_code, c.name AS course_name
        FROM exams e
        JOIN courses c ON c.id = e.course_id
        WHERE e.course_id = $1
        ORDER BY e.year DESC, e.kind`

	if err := r.db.SelectContext(ctx, &exams, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (r *CourseRepository) DeleteExam(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("exam %d", id)
	}
	return nil
}
