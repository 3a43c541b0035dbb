package domain

import "time"

// Audit actions recorded for destructive administrator operations.
const (
	AuditFileDeleteApproved = "file_delete_approved"
	AuditFileHardDeleted    = "file_hard_deleted"
	AuditUserRoleChanged    = "user_role_changed"
)

// AuditRecord is an append-only trace of a destructive action. It is written
// as a side effect and never read back by the workflows that produce it.
type AuditRecord struct {
	ID         int64     `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	FileName   string    `json:"file_name" db:"file_name"`
	CourseCode string    `json:"course_code" db:"course_code"`
	Detail     string    `json:"detail" db:"detail"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
