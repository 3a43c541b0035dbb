package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an audit entry. The table is append-only; nothing in the
// service ever updates or deletes rows.
func (r *AuditRepository) Record(ctx context.Context, rec *domain.AuditRecord) error {
	query := `
        INSERT INTO audit_records (actor_id, action, file_name, course_code, detail)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.ActorID,
		rec.Action,
		rec.FileName,
		rec.CourseCode,
		rec.Detail,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	records := []domain.AuditRecord{}
	query := `SELECT * FROM audit_records ORDER BY created_at DESC LIMIT $1`

	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}
