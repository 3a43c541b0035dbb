package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeleteRequestStatus string

const (
	// StatusPending awaits an administrator decision.
	StatusPending DeleteRequestStatus = "PENDING"
	// StatusRejected is terminal; the file stays, the reason is recorded.
	StatusRejected DeleteRequestStatus = "REJECTED"
)

// DeleteRequest asks an administrator to remove an uploaded sample file.
// Approval deletes the row together with the file metadata; the audit log is
// the only durable trace of an approval. At most one PENDING request may
// exist per file.
type DeleteRequest struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	FileUUID        uuid.UUID           `json:"file_uuid" db:"file_uuid"`
	RequesterID     int64               `json:"requester_id" db:"requester_id"`
	Reason          string              `json:"reason" db:"reason"`
	Status          DeleteRequestStatus `json:"status" db:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`

	// Populated via JOIN for the admin review screen
	FileName      string `json:"file_name,omitempty" db:"file_name"`
	CourseCode    string `json:"course_code,omitempty" db:"course_code"`
	RequesterName string `json:"requester_name,omitempty" db:"requester_name"`
}

type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)
