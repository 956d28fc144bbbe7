package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, username, email, full_name, role, status,
	last_login_at, last_activity_at, has_created_project`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash, full_name, role, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) Create(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), params.Username, params.Email, params.PasswordHash,
		params.FullName, params.Role, params.Status,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const usernameOrEmailTaken = `-- name: UsernameOrEmailTaken
SELECT EXISTS (
	SELECT 1 FROM users WHERE username = $1 OR email = $2
)
`

// Exact, case sensitive match against both unique columns in one query
func (r *UserRepo) UsernameOrEmailTaken(ctx context.Context, username string, email string) (bool, error) {
	rows, _ := r.DB.Query(ctx, usernameOrEmailTaken, username, email)
	taken, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return taken, nil
}

const getUserWithPassword = `-- name: GetUserWithPassword
SELECT ` + userColumns + `, password_hash
FROM users
WHERE username = $1
`

// The only read that selects the password hash
func (r *UserRepo) GetWithPassword(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserWithPassword, username)
	user, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(
			&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.FullName, &u.Role,
			&u.Status, &u.LastLoginAt, &u.LastActivityAt, &u.HasCreatedProject,
			&u.PasswordHash,
		)
		return u, err
	})

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const touchLastLogin = `-- name: TouchLastLogin
UPDATE users
SET last_login_at = $2, last_activity_at = $2
WHERE id = $1
`

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.DB.Exec(ctx, touchLastLogin, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const touchLastActivity = `-- name: TouchLastActivity
UPDATE users
SET last_activity_at = $2
WHERE id = $1
`

func (r *UserRepo) TouchLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.DB.Exec(ctx, touchLastActivity, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const setHasCreatedProject = `-- name: SetHasCreatedProject
UPDATE users
SET has_created_project = TRUE
WHERE id = $1
`

func (r *UserRepo) SetHasCreatedProject(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, setHasCreatedProject, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.FullName, &u.Role,
		&u.Status, &u.LastLoginAt, &u.LastActivityAt, &u.HasCreatedProject,
	)
	return u, err
}
