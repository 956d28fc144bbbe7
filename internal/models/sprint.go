package models

import (
	"time"

	"github.com/google/uuid"
)

// Sprint status. Transitions are linear: planned -> active -> completed.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// CanTransitionTo reports whether moving to the target status is allowed
func (s SprintStatus) CanTransitionTo(target SprintStatus) bool {
	switch s {
	case SprintPlanned:
		return target == SprintActive
	case SprintActive:
		return target == SprintCompleted
	default:
		return false
	}
}

type Sprint struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	ProjectID uuid.UUID    `json:"projectId"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	Status    SprintStatus `json:"status"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
