package usecase

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ApproveTask advances a task waiting for human sign-off. The task resumes
// through its handler so the remaining side effect actually runs; the
// outcome is committed the same way as a first execution.
func (u *UseCases) ApproveTask(ctx context.Context, taskID types.TaskID) (*model.TaskExecution, *interfaces.HandlerResult, error) {
	task, err := u.repo.Task().Get(ctx, taskID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to get task", goerr.V("task_id", taskID))
	}

	if task.Status != types.TaskStatusWaitingApproval {
		return nil, nil, goerr.Wrap(ErrNotWaitingApproval, "cannot approve",
			goerr.V("task_id", taskID),
			goerr.V("status", task.Status),
		)
	}

	if task.Params == nil {
		task.Params = map[string]any{}
	}
	task.Params["approved"] = true

	return u.executor.Execute(ctx, task)
}
