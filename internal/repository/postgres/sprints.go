package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

type SprintRepo struct {
	DB DBTX
}

const sprintColumns = `id, created_at, project_id, name, goal, status, started_at, completed_at`

const createSprint = `-- name: CreateSprint
INSERT INTO sprints (id, project_id, name, goal)
VALUES ($1, $2, $3, $4)
RETURNING ` + sprintColumns

func (r *SprintRepo) Create(ctx context.Context, params repository.CreateSprintParams) (models.Sprint, error) {
	rows, _ := r.DB.Query(ctx, createSprint, uuid.New(), params.ProjectID, params.Name, params.Goal)
	sprint, err := pgx.CollectOneRow(rows, rowToSprint)
	if err != nil {
		return sprint, fmt.Errorf("db error: %w", err)
	}

	return sprint, nil
}

const getSprintByID = `-- name: GetSprintByID
SELECT ` + sprintColumns + `
FROM sprints
WHERE id = $1
`

func (r *SprintRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Sprint, error) {
	rows, _ := r.DB.Query(ctx, getSprintByID, id)
	sprint, err := pgx.CollectOneRow(rows, rowToSprint)

	switch {
	case err == nil:
		return sprint, nil
	case errors.Is(err, pgx.ErrNoRows):
		return sprint, apperrors.ErrSprintNotFound
	default:
		return sprint, fmt.Errorf("db error: %w", err)
	}
}

const setSprintStatus = `-- name: SetSprintStatus
UPDATE sprints
SET status = $3,
    started_at = CASE WHEN $3 = 'active' THEN $4 ELSE started_at END,
    completed_at = CASE WHEN $3 = 'completed' THEN $4 ELSE completed_at END
WHERE id = $1 AND status = $2
RETURNING ` + sprintColumns

// Conditional on the current status so concurrent transitions cannot both win
func (r *SprintRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to models.SprintStatus, at time.Time) (models.Sprint, error) {
	rows, _ := r.DB.Query(ctx, setSprintStatus, id, from, to, at)
	sprint, err := pgx.CollectOneRow(rows, rowToSprint)

	if err == nil {
		return sprint, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return sprint, fmt.Errorf("db error: %w", err)
	}

	// Either the sprint is gone or it moved out of 'from' under our feet
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return sprint, getErr
	}
	return sprint, apperrors.ErrInvalidTransition
}

func rowToSprint(row pgx.CollectableRow) (models.Sprint, error) {
	var s models.Sprint
	err := row.Scan(&s.ID, &s.CreatedAt, &s.ProjectID, &s.Name, &s.Goal, &s.Status, &s.StartedAt, &s.CompletedAt)
	return s, err
}
