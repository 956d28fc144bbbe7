package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devadeboye/mini-jira/internal/models"
)

// Storage aggregates all repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Project() ProjectRepo
	Sprint() SprintRepo
	WorkItem() WorkItemRepo

	// Run fn inside a db transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         models.Role
	Status       models.Status
}

// User repository interface
type UserRepo interface {
	// Create user
	// If username or email is taken has to return apperrors.ErrUserAlreadyExists
	Create(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by id. The password hash is not selected
	// If user not found must return apperrors.ErrUserNotFound
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Single lookup over both unique columns, exact match.
	// Used by the optimistic pre-insert conflict check
	UsernameOrEmailTaken(ctx context.Context, username string, email string) (bool, error)

	// Get user by username including the password hash.
	// Only the credential validation path may call it
	GetWithPassword(ctx context.Context, username string) (models.User, error)

	// Timestamps mutated by the auth gateway
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	TouchLastActivity(ctx context.Context, userID uuid.UUID, at time.Time) error

	SetHasCreatedProject(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Persist new token record
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the record whatever its state, apperrors.ErrRefreshTokenNotFound if absent
	Get(ctx context.Context, tokenID uuid.UUID) (models.RefreshToken, error)

	// Atomically revoke the record if it is still live at 'now'.
	// Exactly one of two concurrent calls for the same id may succeed.
	// Failure reasons map to apperrors.ErrRefreshTokenNotFound,
	// ErrRefreshTokenRevoked or ErrRefreshTokenExpired
	RevokeIfUsable(ctx context.Context, tokenID uuid.UUID, now time.Time) (models.RefreshToken, error)

	// Revoke every live token of the user, returns how many were revoked
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

type CreateProjectParams struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

type ProjectRepo interface {
	Create(ctx context.Context, params CreateProjectParams) (models.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
}

type CreateSprintParams struct {
	ProjectID uuid.UUID
	Name      string
	Goal      string
}

type SprintRepo interface {
	Create(ctx context.Context, params CreateSprintParams) (models.Sprint, error)
	GetByID(ctx context.Context, sprintID uuid.UUID) (models.Sprint, error)

	// Conditional update: moves the sprint to 'to' only while it is still in
	// 'from', so concurrent transitions cannot both win.
	// Returns apperrors.ErrInvalidTransition when the row was not in 'from'
	SetStatus(ctx context.Context, sprintID uuid.UUID, from, to models.SprintStatus, at time.Time) (models.Sprint, error)
}

type CreateWorkItemParams struct {
	ProjectID   uuid.UUID
	SprintID    *uuid.UUID
	AssigneeID  *uuid.UUID
	Title       string
	Description string
	StoryPoints decimal.Decimal
}

type WorkItemRepo interface {
	Create(ctx context.Context, params CreateWorkItemParams) (models.WorkItem, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (models.WorkItem, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.WorkItem, error)
	ListBySprint(ctx context.Context, sprintID uuid.UUID) ([]models.WorkItem, error)
	SetStatus(ctx context.Context, itemID uuid.UUID, status models.WorkItemStatus) (models.WorkItem, error)
}
