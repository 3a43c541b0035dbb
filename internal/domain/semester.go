package domain

import "time"

// Semester is an academic term. At most one semester is active at a time;
// uploads attach to the active one.
type Semester struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartsOn  time.Time `json:"starts_on" db:"starts_on"`
	EndsOn    time.Time `json:"ends_on" db:"ends_on"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
