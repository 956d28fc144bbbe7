package models

import (
	"time"

	"github.com/google/uuid"
)

// User role. Admin permissions are a strict superset of regular user ones,
// the mapping itself lives in the authz service.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User account status. Only active users may authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Status       Status

	LastLoginAt    *time.Time
	LastActivityAt *time.Time

	// Set once the user creates their first project
	HasCreatedProject bool
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// PublicUser is the representation safe to return to clients.
// The password hash never leaves the repository boundary except through
// the credential validation path.
type PublicUser struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FullName          string     `json:"fullName"`
	Role              Role       `json:"role"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
	HasCreatedProject bool       `json:"hasCreatedProject"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		Role:              u.Role,
		Status:            u.Status,
		CreatedAt:         u.CreatedAt,
		LastLoginAt:       u.LastLoginAt,
		HasCreatedProject: u.HasCreatedProject,
	}
}
