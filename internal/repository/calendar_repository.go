package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type CalendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Create(ctx context.Context, ev *domain.AcademicEvent) error {
	query := `
        INSERT INTO academic_events (title, kind, starts_at, ends_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		ev.Title,
		ev.Kind,
		ev.StartsAt,
		ev.EndsAt,
	).Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert academic event: %w", err)
	}
	return nil
}

func (r *CalendarRepository) FindByID(ctx context.Context, id int64) (*domain.AcademicEvent, error) {
	var ev domain.AcademicEvent
	err := r.db.GetContext(ctx, &ev, `SELECT * FROM academic_events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find academic event: %w", err)
	}
	return &ev, nil
}

// ListRange returns events overlapping the [from, to] window.
func (r *CalendarRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.AcademicEvent, error) {
	events := []domain.AcademicEvent{}
	query := `
        SELECT * FROM academic_events
        WHERE starts_at <= $2 AND ends_at >= $1
        ORDER BY starts_at`

	if err := r.db.SelectContext(ctx, &events, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list academic events: %w", err)
	}
	return events, nil
}

func (r *CalendarRepository) Update(ctx context.Context, ev *domain.AcademicEvent) error {
	query := `
        UPDATE academic_events
        SET title = $2, kind = $3, starts_at = $4, ends_at = $5, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		ev.ID,
		ev.Title,
		ev.Kind,
		ev.StartsAt,
		ev.EndsAt,
	).Scan(&ev.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("academic event %d", ev.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update academic event: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM academic_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete academic event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("academic event %d", id)
	}
	return nil
}
