package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"paperarchive/internal/domain"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, title, message, severity, deep_link)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Severity,
		n.DeepLink,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	query := `SELECT * FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("notification %s", id)
	}
	return nil
}
