package domain

import "time"

// Role is the closed set of portal roles.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusPending   AccountStatus = "pending"
	StatusSuspended AccountStatus = "suspended"
)

// Valid reports whether s is one of the known account statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// User is the profile record backing a session.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	Role         Role          `json:"role"`
	Approved     bool          `json:"approved"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Identity is the per-request view of who is calling. It is resolved fresh on
// every request and must never be cached across requests.
type Identity struct {
	UserID   string        `json:"user_id"`
	Role     Role          `json:"role"`
	Approved bool          `json:"approved"`
	Status   AccountStatus `json:"status"`
}

// Identity projects the profile onto the fields authorization depends on.
func (u *User) Identity() *Identity {
	return &Identity{
		UserID:   u.ID,
		Role:     u.Role,
		Approved: u.Approved,
		Status:   u.Status,
	}
}
