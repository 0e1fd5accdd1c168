package interfaces

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// TaskRepository defines the interface for TaskExecution persistence.
// Implementations must reject updates to tasks in a terminal state and
// enforce the status transition table.
type TaskRepository interface {
	// Create persists a new task execution record
	Create(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error)

	// Get retrieves a task by ID
	Get(ctx context.Context, id types.TaskID) (*model.TaskExecution, error)

	// GetByIdempotencyKey retrieves a task by its idempotency key.
	// Returns ErrNotFound when no task carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*model.TaskExecution, error)

	// Update mutates a non-terminal task. The status change must satisfy
	// types.TaskStatus.CanTransition (same-status updates are allowed).
	Update(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error)

	// ListByUser retrieves tasks of a user, newest first, up to limit
	ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.TaskExecution, error)
}
