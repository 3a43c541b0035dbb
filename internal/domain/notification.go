package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "SUCCESS"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Notification is an in-app message for a user. Delivery is fire-and-forget;
// enqueue failures are logged and never surfaced to the operation that
// triggered them.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Severity  Severity  `json:"severity" db:"severity"`
	DeepLink  string    `json:"deep_link" db:"deep_link"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
