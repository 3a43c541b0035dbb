package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
)

// User is a portal user record. Authentication lives in the external identity
// provider; Subject is the IdP subject claim that ties a token to this row.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the authenticated caller of a service operation, resolved by the
// handler from the request token. Services check the role themselves instead
// of reading it from ambient state.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
