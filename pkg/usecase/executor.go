package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// Executor drives a planned task through its handler. It is the only
// component that mutates a task after creation.
type Executor struct {
	repo     interfaces.Repository
	handlers map[types.Intent]interfaces.ActionHandler
	now      func() time.Time
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithExecutorClock injects a clock for tests
func WithExecutorClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		e.now = now
	}
}

// NewExecutor creates an executor with an explicit handler registry. The
// registry is a plain map built at startup; there is no reflection or
// name-convention dispatch.
func NewExecutor(repo interfaces.Repository, handlers map[types.Intent]interfaces.ActionHandler, opts ...ExecutorOption) *Executor {
	e := &Executor{
		repo:     repo,
		handlers: handlers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute transitions the task to EXECUTING, runs the registered handler,
// and commits the terminal outcome. Handler errors and panics are captured
// into the FAILED state, never re-raised.
func (e *Executor) Execute(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, *interfaces.HandlerResult, error) {
	task.Status = types.TaskStatusExecuting
	task.StartedAt = e.now().UTC()
	task, err := e.repo.Task().Update(ctx, task)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to mark task executing", goerr.V("task_id", task.ID))
	}

	handler, ok := e.handlers[task.Intent]
	if !ok {
		task.Status = types.TaskStatusFailed
		task.ErrorMessage = ErrNoHandler.Error()
		task.CompletedAt = e.now().UTC()
		task, uerr := e.repo.Task().Update(ctx, task)
		if uerr != nil {
			return nil, nil, goerr.Wrap(uerr, "failed to mark task failed", goerr.V("task_id", task.ID))
		}
		return task, &interfaces.HandlerResult{
			Success: false,
			Message: "I don't know how to handle that request yet.",
		}, nil
	}

	result := e.runHandler(ctx, handler, task.Params)

	task.CompletedAt = e.now().UTC()
	if result.Success && result.NeedsApproval {
		task.Status = types.TaskStatusWaitingApproval
		task.Result = map[string]any{"message": result.Message}
		task.CompletedAt = time.Time{}
	} else if result.Success {
		task.Status = types.TaskStatusPublished
		task.Result = map[string]any{"message": result.Message}
		if result.Data != nil {
			task.Result["data"] = result.Data
		}
	} else {
		task.Status = types.TaskStatusFailed
		task.ErrorMessage = result.Message
	}

	task, err = e.repo.Task().Update(ctx, task)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to commit task outcome", goerr.V("task_id", task.ID))
	}

	return task, result, nil
}

// ExecuteLightweight dispatches an intent that has no task record. Missing
// handlers and panics degrade to a failed result instead of an error.
func (e *Executor) ExecuteLightweight(ctx context.Context, intent types.Intent, params map[string]any) *interfaces.HandlerResult {
	handler, ok := e.handlers[intent]
	if !ok {
		return &interfaces.HandlerResult{Success: true}
	}
	return e.runHandler(ctx, handler, params)
}

// runHandler invokes a handler, converting errors and panics into a failed
// result. A nil result with a nil error counts as success.
func (e *Executor) runHandler(ctx context.Context, handler interfaces.ActionHandler, params map[string]any) (result *interfaces.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("action handler panicked", "panic", fmt.Sprintf("%v", r))
			result = &interfaces.HandlerResult{
				Success:  false,
				Message:  fmt.Sprintf("handler panicked: %v", r),
				Internal: true,
			}
		}
	}()

	res, err := handler(ctx, params)
	if err != nil {
		return &interfaces.HandlerResult{
			Success:  false,
			Message:  err.Error(),
			Internal: true,
		}
	}
	if res == nil {
		return &interfaces.HandlerResult{Success: true}
	}
	return res
}
