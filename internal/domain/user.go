package domain

import "time"

// Role determines which operations a user may perform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleSupport  Role = "support"
)

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleSupport:
		return true
	}
	return false
}

// User is the domain model for everyone who signs into the system.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	ProfileImage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the minimal author projection attached to tickets and
// comments for display. It never carries credentials.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the display projection of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
