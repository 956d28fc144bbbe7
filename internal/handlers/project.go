package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/handlers/middleware"
	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/service/tracker"
)

type trackerService interface {
	CreateProject(ctx context.Context, owner models.User, name string, description string) (models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	CreateSprint(ctx context.Context, projectID uuid.UUID, name string, goal string) (models.Sprint, error)
	TransitionSprint(ctx context.Context, sprintID uuid.UUID, target models.SprintStatus) (models.Sprint, error)
	SprintStats(ctx context.Context, sprintID uuid.UUID) (models.SprintStats, error)

	CreateWorkItem(ctx context.Context, params tracker.CreateWorkItemParams) (models.WorkItem, error)
	ListProjectItems(ctx context.Context, projectID uuid.UUID) ([]models.WorkItem, error)
	SetWorkItemStatus(ctx context.Context, itemID uuid.UUID, status models.WorkItemStatus) (models.WorkItem, error)
}

type TrackerHandler struct {
	tracker trackerService
}

func NewTracker(tracker trackerService) *TrackerHandler {
	return &TrackerHandler{tracker: tracker}
}

// pathID pulls a uuid route parameter, writing 404 on garbage.
// A malformed id can't name any resource, so not-found fits better
// than bad-request.
func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		render.ServiceError(w, "Not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *TrackerHandler) trackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProjectNotFound),
		errors.Is(err, apperrors.ErrSprintNotFound),
		errors.Is(err, apperrors.ErrWorkItemNotFound):
		render.ServiceError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrInvalidItemState):
		render.ServiceError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromRequest(r).Error().Err(err).Msg("tracker operation failed")
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *TrackerHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	type CreateProjectRequest struct {
		Name        string `json:"name" validate:"required,min=1,max=100"`
		Description string `json:"description" validate:"max=1000"`
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[CreateProjectRequest](w, r)
	if err != nil {
		return
	}

	project, err := h.tracker.CreateProject(r.Context(), user, data.Name, data.Description)
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSONWithStatus(w, project, http.StatusCreated)
}

func (h *TrackerHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.tracker.ListProjects(r.Context())
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, projects)
}

func (h *TrackerHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	project, err := h.tracker.GetProject(r.Context(), projectID)
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, project)
}

func (h *TrackerHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	if err := h.tracker.DeleteProject(r.Context(), projectID); err != nil {
		h.trackerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TrackerHandler) ListProjectItems(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	items, err := h.tracker.ListProjectItems(r.Context(), projectID)
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, items)
}
