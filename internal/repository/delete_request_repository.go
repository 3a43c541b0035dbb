package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"paperarchive/internal/domain"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index when a second PENDING request is inserted for the same file.
const uniqueViolation = "23505"

type DeleteRequestRepository struct {
	db *sqlx.DB
}

func NewDeleteRequestRepository(db *sqlx.DB) *DeleteRequestRepository {
	return &DeleteRequestRepository{db: db}
}

// Insert persists a new PENDING request. The partial unique index backs the
// "one PENDING per file" invariant even when two submissions race past the
// application-level check.
func (r *DeleteRequestRepository) Insert(ctx context.Context, req *domain.DeleteRequest) error {
	query := `
        INSERT INTO delete_requests (id, file_uuid, requester_id, reason, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		req.ID,
		req.FileUUID,
		req.RequesterID,
		req.Reason,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.ConflictError("a pending delete request already exists for file %s", req.FileUUID)
		}
		return fmt.Errorf("failed to insert delete request: %w", err)
	}
	return nil
}

// FindByID returns the request joined with file, course and requester
// details, or (nil, nil) when absent.
func (r *DeleteRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeleteRequest, error) {
	var req domain.DeleteRequest
	query := `
        SELECT dr.*, f.name AS file_name, c.code AS course_code, u.full_name AS requester_name
        FROM delete_requests dr
        JOIN exam_files f ON f.uuid = dr.file_uuid
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        JOIN users u ON u.id = dr.requester_id
        WHERE dr.id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find delete request: %w", err)
	}
	return &req, nil
}

// FindPendingByFile returns the PENDING request for a file, or (nil, nil).
func (r *DeleteRequestRepository) FindPendingByFile(ctx context.Context, fileUUID uuid.UUID) (*domain.DeleteRequest, error) {
	var req domain.DeleteRequest
	query := `SELECT * FROM delete_requests WHERE file_uuid = $1 AND status = 'PENDING'`

	err := r.db.GetContext(ctx, &req, query, fileUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending request: %w", err)
	}
	return &req, nil
}

func (r *DeleteRequestRepository) ListPending(ctx context.Context) ([]domain.DeleteRequest, error) {
	requests := []domain.DeleteRequest{}
	query := `
        SELECT dr.*, f.name AS file_name, c.code AS course_code, u.full_name AS requester_name
        FROM delete_requests dr
        JOIN exam_files f ON f.uuid = dr.file_uuid
        JOIN exams e ON e.id = f.exam_id
        JOIN courses c ON c.id = e.course_id
        JOIN users u ON u.id = dr.requester_id
        WHERE dr.status = 'PENDING'
        ORDER BY dr.created_at`

	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// Reject transitions the request to its terminal REJECTED state. The status
// guard in the WHERE clause makes the check-and-act atomic: a request that
// was decided concurrently yields zero affected rows.
func (r *DeleteRequestRepository) Reject(ctx context.Context, id uuid.UUID, reason string) (int64, error) {
	query := `
        UPDATE delete_requests
        SET status = 'REJECTED', rejection_reason = $2, updated_at = now()
        WHERE id = $1 AND status = 'PENDING'`

	res, err := r.db.ExecContext(ctx, query, id, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to reject delete request: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ApproveDelete removes the request row and the file metadata row in one
// transaction, guarded on the request still being PENDING. Approval leaves
// no request row behind; the audit log is the only durable trace.
func (r *DeleteRequestRepository) ApproveDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fileUUID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`DELETE FROM delete_requests WHERE id = $1 AND status = 'PENDING' RETURNING file_uuid`,
		id,
	).Scan(&fileUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete request row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_files WHERE uuid = $1`, fileUUID); err != nil {
		return 0, fmt.Errorf("failed to delete file metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return 1, nil
}
