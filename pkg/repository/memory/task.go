package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[types.TaskID]*model.TaskExecution
	// idempotency key -> task ID, enforces uniqueness
	keys map[string]types.TaskID
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks: make(map[types.TaskID]*model.TaskExecution),
		keys:  make(map[string]types.TaskID),
	}
}

func copyTask(t *model.TaskExecution) *model.TaskExecution {
	copied := *t
	if t.Params != nil {
		copied.Params = make(map[string]any, len(t.Params))
		for k, v := range t.Params {
			copied.Params[k] = v
		}
	}
	if t.Plan != nil {
		copied.Plan = make([]string, len(t.Plan))
		copy(copied.Plan, t.Plan)
	}
	if t.Result != nil {
		copied.Result = make(map[string]any, len(t.Result))
		for k, v := range t.Result {
			copied.Result[k] = v
		}
	}
	return &copied
}

func (r *taskRepository) Create(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.IdempotencyKey != "" {
		if existing, taken := r.keys[task.IdempotencyKey]; taken {
			return nil, goerr.Wrap(ErrDuplicateKey, "idempotency key already used",
				goerr.V("key", task.IdempotencyKey),
				goerr.V("task_id", existing),
			)
		}
	}

	created := copyTask(task)
	if created.ID == "" {
		created.ID = types.NewTaskID()
	}
	if created.Status == "" {
		created.Status = types.TaskStatusCreated
	}
	created.CreatedAt = time.Now().UTC()

	r.tasks[created.ID] = created
	if created.IdempotencyKey != "" {
		r.keys[created.IdempotencyKey] = created.ID
	}

	return copyTask(created), nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.TaskExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
	}

	return copyTask(task), nil
}

func (r *taskRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.TaskExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.keys[key]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "no task for idempotency key", goerr.V("key", key))
	}

	return copyTask(r.tasks[id]), nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tasks[task.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", task.ID))
	}

	// Terminal records are frozen
	if existing.Status.IsTerminal() {
		return nil, goerr.Wrap(ErrTerminalState, "task is immutable",
			goerr.V("id", task.ID),
			goerr.V("status", existing.Status),
		)
	}

	if task.Status != existing.Status && !existing.Status.CanTransition(task.Status) {
		return nil, goerr.Wrap(ErrBadTransition, "status transition rejected",
			goerr.V("id", task.ID),
			goerr.V("from", existing.Status),
			goerr.V("to", task.Status),
		)
	}

	updated := copyTask(task)
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	updated.IdempotencyKey = existing.IdempotencyKey

	r.tasks[updated.ID] = updated
	return copyTask(updated), nil
}

func (r *taskRepository) ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.TaskExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.TaskExecution
	for _, t := range r.tasks {
		if t.UserID == userID {
			result = append(result, copyTask(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
