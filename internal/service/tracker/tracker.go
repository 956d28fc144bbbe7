// Package tracker holds the project, sprint and work item operations that
// sit behind the authorization seam. Persistence stays thin, the only logic
// here is the sprint lifecycle check and the sprint statistics aggregate.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

type Service struct {
	storage repository.Storage
	now     func() time.Time
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// CreateProject persists the project and flips the owner's
// has-created-project flag on their first one
func (s *Service) CreateProject(ctx context.Context, owner models.User, name string, description string) (models.Project, error) {
	var project models.Project

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error
		project, err = store.Project().Create(ctx, repository.CreateProjectParams{
			OwnerID:     owner.ID,
			Name:        name,
			Description: description,
		})
		if err != nil {
			return err
		}

		if !owner.HasCreatedProject {
			return store.User().SetHasCreatedProject(ctx, owner.ID)
		}
		return nil
	})
	if err != nil {
		return project, fmt.Errorf("can't create project. Err: %w", err)
	}

	return project, nil
}

func (s *Service) GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	return s.storage.Project().GetByID(ctx, projectID)
}

func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.storage.Project().List(ctx)
}

func (s *Service) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	return s.storage.Project().Delete(ctx, projectID)
}

func (s *Service) CreateSprint(ctx context.Context, projectID uuid.UUID, name string, goal string) (models.Sprint, error) {
	var sprint models.Sprint

	// Make sure the project exists, foreign key errors make poor responses
	if _, err := s.storage.Project().GetByID(ctx, projectID); err != nil {
		return sprint, err
	}

	sprint, err := s.storage.Sprint().Create(ctx, repository.CreateSprintParams{
		ProjectID: projectID,
		Name:      name,
		Goal:      goal,
	})
	if err != nil {
		return sprint, fmt.Errorf("can't create sprint. Err: %w", err)
	}

	return sprint, nil
}

// TransitionSprint moves the sprint along planned -> active -> completed.
// Anything else fails with ErrInvalidTransition. The repository update is
// conditional on the current status so two concurrent transitions can't
// both succeed.
func (s *Service) TransitionSprint(ctx context.Context, sprintID uuid.UUID, target models.SprintStatus) (models.Sprint, error) {
	sprint, err := s.storage.Sprint().GetByID(ctx, sprintID)
	if err != nil {
		return sprint, err
	}

	if !sprint.Status.CanTransitionTo(target) {
		return sprint, apperrors.ErrInvalidTransition
	}

	return s.storage.Sprint().SetStatus(ctx, sprintID, sprint.Status, target, s.now())
}

type CreateWorkItemParams struct {
	SprintID    uuid.UUID
	AssigneeID  *uuid.UUID
	Title       string
	Description string
	StoryPoints decimal.Decimal
}

// CreateWorkItem adds an item to the sprint's project, attached to the sprint
func (s *Service) CreateWorkItem(ctx context.Context, params CreateWorkItemParams) (models.WorkItem, error) {
	var item models.WorkItem

	sprint, err := s.storage.Sprint().GetByID(ctx, params.SprintID)
	if err != nil {
		return item, err
	}

	if params.StoryPoints.IsNegative() {
		return item, fmt.Errorf("%w: negative story points", apperrors.ErrInvalidItemState)
	}

	item, err = s.storage.WorkItem().Create(ctx, repository.CreateWorkItemParams{
		ProjectID:   sprint.ProjectID,
		SprintID:    &sprint.ID,
		AssigneeID:  params.AssigneeID,
		Title:       params.Title,
		Description: params.Description,
		StoryPoints: params.StoryPoints,
	})
	if err != nil {
		return item, fmt.Errorf("can't create work item. Err: %w", err)
	}

	return item, nil
}

func (s *Service) ListProjectItems(ctx context.Context, projectID uuid.UUID) ([]models.WorkItem, error) {
	if _, err := s.storage.Project().GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	return s.storage.WorkItem().ListByProject(ctx, projectID)
}

func (s *Service) SetWorkItemStatus(ctx context.Context, itemID uuid.UUID, status models.WorkItemStatus) (models.WorkItem, error) {
	if !status.Valid() {
		return models.WorkItem{}, apperrors.ErrInvalidItemState
	}

	return s.storage.WorkItem().SetStatus(ctx, itemID, status)
}

var hundred = decimal.NewFromInt(100)

// SprintStats aggregates item counts and story points for the sprint.
// Completion percentage is exact decimal arithmetic rounded to two places.
func (s *Service) SprintStats(ctx context.Context, sprintID uuid.UUID) (models.SprintStats, error) {
	sprint, err := s.storage.Sprint().GetByID(ctx, sprintID)
	if err != nil {
		return models.SprintStats{}, err
	}

	items, err := s.storage.WorkItem().ListBySprint(ctx, sprint.ID)
	if err != nil {
		return models.SprintStats{}, err
	}

	stats := models.SprintStats{
		SprintID:        sprint.ID,
		TotalItems:      len(items),
		ItemsByStatus:   make(map[string]int, 3),
		TotalPoints:     decimal.Zero,
		CompletedPoints: decimal.Zero,
		CompletionPct:   decimal.Zero,
	}

	for _, item := range items {
		stats.ItemsByStatus[string(item.Status)]++
		stats.TotalPoints = stats.TotalPoints.Add(item.StoryPoints)
		if item.Status == models.ItemDone {
			stats.CompletedPoints = stats.CompletedPoints.Add(item.StoryPoints)
		}
	}

	if stats.TotalPoints.IsPositive() {
		stats.CompletionPct = stats.CompletedPoints.Div(stats.TotalPoints).Mul(hundred).Round(2)
	}

	return stats, nil
}
