package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/service/tracker"
)

func (h *TrackerHandler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	type CreateItemRequest struct {
		Title       string          `json:"title" validate:"required,min=1,max=200"`
		Description string          `json:"description" validate:"max=2000"`
		StoryPoints decimal.Decimal `json:"storyPoints"`
		AssigneeID  *uuid.UUID      `json:"assigneeId"`
	}

	sprintID, ok := pathID(w, r, "sprintID")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[CreateItemRequest](w, r)
	if err != nil {
		return
	}

	item, err := h.tracker.CreateWorkItem(r.Context(), tracker.CreateWorkItemParams{
		SprintID:    sprintID,
		AssigneeID:  data.AssigneeID,
		Title:       data.Title,
		Description: data.Description,
		StoryPoints: data.StoryPoints,
	})
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSONWithStatus(w, item, http.StatusCreated)
}

func (h *TrackerHandler) SetWorkItemStatus(w http.ResponseWriter, r *http.Request) {
	type SetStatusRequest struct {
		Status string `json:"status" validate:"required,oneof=todo in_progress done"`
	}

	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[SetStatusRequest](w, r)
	if err != nil {
		return
	}

	item, err := h.tracker.SetWorkItemStatus(r.Context(), itemID, models.WorkItemStatus(data.Status))
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, item)
}
