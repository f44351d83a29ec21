package model

import (
	"time"
)

// Roles
const (
	RoleStudent    = "student"
	RoleLecturer   = "lecturer"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
	RoleHOD        = "hod"
)

// User statuses
const (
	UserStatusActive   = "active"
	UserStatusPending  = "pending"
	UserStatusDisabled = "disabled"
)

// User represents a platform account. Only the fields the notification
// core and its triggers depend on are persisted here.
type User struct {
	ID           string     `json:"id" db:"id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Email        string     `json:"email" db:"email"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	LecturerID   *string    `json:"lecturer_id,omitempty" db:"lecturer_id"`
	SupervisorID *string    `json:"supervisor_id,omitempty" db:"supervisor_id"`
	TermEndsAt   *time.Time `json:"term_ends_at,omitempty" db:"term_ends_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// IsActive reports whether the account may receive announcements
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Actor is the identity of the user performing an action, as supplied by the auth provider
type Actor struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// LecturerAssignment represents data for assigning a lecturer to a student
type LecturerAssignment struct {
	LecturerID string `json:"lecturer_id" binding:"required"`
}

// SupervisorAssignment represents data for assigning a workplace supervisor to a student
type SupervisorAssignment struct {
	SupervisorID string `json:"supervisor_id" binding:"required"`
}
