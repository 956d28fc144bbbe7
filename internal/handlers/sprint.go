package handlers

import (
	"net/http"

	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/models"
)

func (h *TrackerHandler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	type CreateSprintRequest struct {
		Name string `json:"name" validate:"required,min=1,max=100"`
		Goal string `json:"goal" validate:"max=500"`
	}

	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[CreateSprintRequest](w, r)
	if err != nil {
		return
	}

	sprint, err := h.tracker.CreateSprint(r.Context(), projectID, data.Name, data.Goal)
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSONWithStatus(w, sprint, http.StatusCreated)
}

func (h *TrackerHandler) TransitionSprint(w http.ResponseWriter, r *http.Request) {
	type TransitionRequest struct {
		Status string `json:"status" validate:"required,oneof=planned active completed"`
	}

	sprintID, ok := pathID(w, r, "sprintID")
	if !ok {
		return
	}

	data, err := render.BindAndValidate[TransitionRequest](w, r)
	if err != nil {
		return
	}

	sprint, err := h.tracker.TransitionSprint(r.Context(), sprintID, models.SprintStatus(data.Status))
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, sprint)
}

func (h *TrackerHandler) SprintStats(w http.ResponseWriter, r *http.Request) {
	sprintID, ok := pathID(w, r, "sprintID")
	if !ok {
		return
	}

	stats, err := h.tracker.SprintStats(r.Context(), sprintID)
	if err != nil {
		h.trackerError(w, r, err)
		return
	}

	render.JSON(w, stats)
}
