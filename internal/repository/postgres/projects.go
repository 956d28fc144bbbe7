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

type ProjectRepo struct {
	DB DBTX
}

const createProject = `-- name: CreateProject
INSERT INTO projects (id, owner_id, name, description)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, owner_id, name, description
`

func (r *ProjectRepo) Create(ctx context.Context, params repository.CreateProjectParams) (models.Project, error) {
	rows, _ := r.DB.Query(ctx, createProject, uuid.New(), params.OwnerID, params.Name, params.Description)
	project, err := pgx.CollectOneRow(rows, rowToProject)
	if err != nil {
		return project, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

const getProjectByID = `-- name: GetProjectByID
SELECT id, created_at, owner_id, name, description
FROM projects
WHERE id = $1
`

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Project, error) {
	rows, _ := r.DB.Query(ctx, getProjectByID, id)
	project, err := pgx.CollectOneRow(rows, rowToProject)

	switch {
	case err == nil:
		return project, nil
	case errors.Is(err, pgx.ErrNoRows):
		return project, apperrors.ErrProjectNotFound
	default:
		return project, fmt.Errorf("db error: %w", err)
	}
}

const listProjects = `-- name: ListProjects
SELECT id, created_at, owner_id, name, description
FROM projects
ORDER BY created_at
`

func (r *ProjectRepo) List(ctx context.Context) ([]models.Project, error) {
	rows, _ := r.DB.Query(ctx, listProjects)
	projects, err := pgx.CollectRows(rows, rowToProject)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return projects, nil
}

const deleteProject = `-- name: DeleteProject
DELETE FROM projects
WHERE id = $1
`

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteProject, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}

	return nil
}

func rowToProject(row pgx.CollectableRow) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.CreatedAt, &p.OwnerID, &p.Name, &p.Description)
	return p, err
}
