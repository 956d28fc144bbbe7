package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WorkItemStatus string

const (
	ItemTodo       WorkItemStatus = "todo"
	ItemInProgress WorkItemStatus = "in_progress"
	ItemDone       WorkItemStatus = "done"
)

func (s WorkItemStatus) Valid() bool {
	switch s {
	case ItemTodo, ItemInProgress, ItemDone:
		return true
	}
	return false
}

type WorkItem struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProjectID   uuid.UUID       `json:"projectId"`
	SprintID    *uuid.UUID      `json:"sprintId,omitempty"` // nil while the item sits in the backlog
	AssigneeID  *uuid.UUID      `json:"assigneeId,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      WorkItemStatus  `json:"status"`
	StoryPoints decimal.Decimal `json:"storyPoints"`
}

// SprintStats is the aggregate returned by the sprint statistics endpoint
type SprintStats struct {
	SprintID        uuid.UUID       `json:"sprintId"`
	TotalItems      int             `json:"totalItems"`
	ItemsByStatus   map[string]int  `json:"itemsByStatus"`
	TotalPoints     decimal.Decimal `json:"totalPoints"`
	CompletedPoints decimal.Decimal `json:"completedPoints"`
	// CompletedPoints / TotalPoints * 100, two decimal places, zero when empty
	CompletionPct decimal.Decimal `json:"completionPct"`
}
