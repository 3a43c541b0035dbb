package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type SemesterRepository struct {
	db *sqlx.DB
}

func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

func (r *SemesterRepository) Create(ctx context.Context, sem *domain.Semester) error {
	query := `
        INSERT INTO semesters (name, starts_on, ends_on)
        VALUES ($1, $2, $3)
        RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sem.Name,
		sem.StartsOn,
		sem.EndsOn,
	).Scan(&sem.ID, &sem.IsActive, &sem.CreatedAt, &sem.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert semester: %w", err)
	}
	return nil
}

func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*domain.Semester, error) {
	var sem domain.Semester
	err := r.db.GetContext(ctx, &sem, `SELECT * FROM semesters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find semester: %w", err)
	}
	return &sem, nil
}

// FindActive returns the single active semester, or (nil, nil) when none has
// been activated yet.
func (r *SemesterRepository) FindActive(ctx context.Context) (*domain.Semester, error) {
	var sem domain.Semester
	err := r.db.GetContext(ctx, &sem, `SELECT * FROM semesters WHERE is_active`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active semester: %w", err)
	}
	return &sem, nil
}

func (r *SemesterRepository) List(ctx context.Context) ([]domain.Semester, error) {
	semesters := []domain.Semester{}
	query := `SELECT * FROM semesters ORDER BY starts_on DESC`

	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	return semesters, nil
}

// Activate makes the given semester the active one. The previous active
// semester is deactivated in the same transaction so the partial unique
// index never sees two active rows.
func (r *SemesterRepository) Activate(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE semesters SET is_active = FALSE, updated_at = now() WHERE is_active`); err != nil {
		return fmt.Errorf("failed to deactivate current semester: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE semesters SET is_active = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate semester: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("semester %d", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SemesterRepository) Update(ctx context.Context, sem *domain.Semester) error {
	query := `
        UPDATE semesters
        SET name = $2, starts_on = $3, ends_on = $4, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		sem.ID,
		sem.Name,
		sem.StartsOn,
		sem.EndsOn,
	).Scan(&sem.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("semester %d", sem.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update semester: %w", err)
	}
	return nil
}

func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1 AND NOT is_active`, id)
	if err != nil {
		return fmt.Errorf("failed to delete semester: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ConflictError("semester %d is active or does not exist", id)
	}
	return nil
}
