package domain

import "time"

type EventKind string

const (
	EventExamPeriod   EventKind = "exam_period"
	EventHoliday      EventKind = "holiday"
	EventRegistration EventKind = "registration"
	EventDeadline     EventKind = "deadline"
)

func ValidEventKind(k EventKind) bool {
	switch k {
	case EventExamPeriod, EventHoliday, EventRegistration, EventDeadline:
		return true
	}
	return false
}

// AcademicEvent is an entry in the department calendar.
type AcademicEvent struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Kind      EventKind `json:"kind" db:"kind"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
