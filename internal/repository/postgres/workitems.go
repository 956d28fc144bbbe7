package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

type WorkItemRepo struct {
	DB DBTX
}

const workItemColumns = `id, created_at, project_id, sprint_id, assignee_id, title, description, status, story_points`

const createWorkItem = `-- name: CreateWorkItem
INSERT INTO work_items (id, project_id, sprint_id, assignee_id, title, description, story_points)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + workItemColumns

func (r *WorkItemRepo) Create(ctx context.Context, params repository.CreateWorkItemParams) (models.WorkItem, error) {
	rows, _ := r.DB.Query(ctx, createWorkItem,
		uuid.New(), params.ProjectID, params.SprintID, params.AssigneeID,
		params.Title, params.Description, params.StoryPoints,
	)
	item, err := pgx.CollectOneRow(rows, rowToWorkItem)
	if err != nil {
		return item, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

const getWorkItemByID = `-- name: GetWorkItemByID
SELECT ` + workItemColumns + `
FROM work_items
WHERE id = $1
`

func (r *WorkItemRepo) GetByID(ctx context.Context, id uuid.UUID) (models.WorkItem, error) {
	rows, _ := r.DB.Query(ctx, getWorkItemByID, id)
	item, err := pgx.CollectOneRow(rows, rowToWorkItem)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrWorkItemNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

const listWorkItemsByProject = `-- name: ListWorkItemsByProject
SELECT ` + workItemColumns + `
FROM work_items
WHERE project_id = $1
ORDER BY created_at
`

func (r *WorkItemRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.WorkItem, error) {
	rows, _ := r.DB.Query(ctx, listWorkItemsByProject, projectID)
	items, err := pgx.CollectRows(rows, rowToWorkItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

const listWorkItemsBySprint = `-- name: ListWorkItemsBySprint
SELECT ` + workItemColumns + `
FROM work_items
WHERE sprint_id = $1
ORDER BY created_at
`

func (r *WorkItemRepo) ListBySprint(ctx context.Context, sprintID uuid.UUID) ([]models.WorkItem, error) {
	rows, _ := r.DB.Query(ctx, listWorkItemsBySprint, sprintID)
	items, err := pgx.CollectRows(rows, rowToWorkItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

const setWorkItemStatus = `-- name: SetWorkItemStatus
UPDATE work_items
SET status = $2
WHERE id = $1
RETURNING ` + workItemColumns

func (r *WorkItemRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.WorkItemStatus) (models.WorkItem, error) {
	rows, _ := r.DB.Query(ctx, setWorkItemStatus, id, status)
	item, err := pgx.CollectOneRow(rows, rowToWorkItem)

	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, pgx.ErrNoRows):
		return item, apperrors.ErrWorkItemNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

func rowToWorkItem(row pgx.CollectableRow) (models.WorkItem, error) {
	var i models.WorkItem
	err := row.Scan(&i.ID, &i.CreatedAt, &i.ProjectID, &i.SprintID, &i.AssigneeID, &i.Title, &i.Description, &i.Status, &i.StoryPoints)
	return i, err
}
