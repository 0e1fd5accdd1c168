package model

import (
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// TaskExecution is the durable record of one orchestrated user request.
// It is created by the planner in PLANNED state and mutated only by the
// execution controller until it reaches a terminal state.
type TaskExecution struct {
	ID             types.TaskID
	UserID         types.UserID
	BrandID        types.BrandID
	Intent         types.Intent
	Params         map[string]any
	Status         types.TaskStatus
	Plan           []string
	Result         map[string]any
	ErrorMessage   string
	IdempotencyKey string
	CreatedAt      time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
}

// IsTerminal reports whether the task reached a final state
func (t *TaskExecution) IsTerminal() bool {
	return t.Status.IsTerminal()
}
