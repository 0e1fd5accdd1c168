package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/repository/memory"
	"github.com/atelier-lab/brandloom/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func plannedTask(t *testing.T, repo *memory.Memory, intent types.Intent) *model.TaskExecution {
	t.Helper()
	task, err := repo.Task().Create(context.Background(), &model.TaskExecution{
		UserID: "user-1",
		Intent: intent,
		Status: types.TaskStatusPlanned,
		Plan:   []string{"step"},
	})
	gt.NoError(t, err).Required()
	return task
}

func TestExecutorSuccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentGenerateContent: func(_ context.Context, params map[string]any) (*interfaces.HandlerResult, error) {
			return &interfaces.HandlerResult{Success: true, Message: "drafted", Data: []string{"post-1"}}, nil
		},
	})

	task := plannedTask(t, repo, types.IntentGenerateContent)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusPublished)
	gt.Bool(t, result.Success).True()
	gt.Bool(t, updated.StartedAt.IsZero()).False()
	gt.Bool(t, updated.CompletedAt.IsZero()).False()

	stored, err := repo.Task().Get(ctx, task.ID)
	gt.NoError(t, err)
	gt.Value(t, stored.Status).Equal(types.TaskStatusPublished)
}

func TestExecutorHandlerFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentDeleteContent: func(_ context.Context, _ map[string]any) (*interfaces.HandlerResult, error) {
			return &interfaces.HandlerResult{Success: false, Message: "content not yours"}, nil
		},
	})

	task := plannedTask(t, repo, types.IntentDeleteContent)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusFailed)
	gt.Value(t, updated.ErrorMessage).Equal("content not yours")
	gt.Bool(t, result.Success).False()
	// Reported by the handler, so the message may face the user
	gt.Bool(t, result.Internal).False()
}

func TestExecutorHandlerError(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentUpdateSettings: func(_ context.Context, _ map[string]any) (*interfaces.HandlerResult, error) {
			return nil, errors.New("storage offline")
		},
	})

	task := plannedTask(t, repo, types.IntentUpdateSettings)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusFailed)
	gt.Value(t, updated.ErrorMessage).Equal("storage offline")
	gt.Bool(t, result.Internal).True()
}

func TestExecutorHandlerPanic(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentSchedulePost: func(_ context.Context, _ map[string]any) (*interfaces.HandlerResult, error) {
			panic("nil dereference in handler")
		},
	})

	task := plannedTask(t, repo, types.IntentSchedulePost)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusFailed)
	gt.Bool(t, result.Success).False()
	gt.Bool(t, result.Internal).True()
}

func TestExecutorNoHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{})

	task := plannedTask(t, repo, types.IntentListContent)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusFailed)
	gt.Bool(t, result.Success).False()
}

func TestExecutorNilResultDefaultsToSuccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentBrandSummary: func(_ context.Context, _ map[string]any) (*interfaces.HandlerResult, error) {
			return nil, nil
		},
	})

	task := plannedTask(t, repo, types.IntentBrandSummary)
	updated, result, err := executor.Execute(ctx, task)
	gt.NoError(t, err)
	gt.Value(t, updated.Status).Equal(types.TaskStatusPublished)
	gt.Bool(t, result.Success).True()
}

func TestExecuteLightweightHasNoTaskRecord(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	called := false
	executor := usecase.NewExecutor(repo, map[types.Intent]interfaces.ActionHandler{
		types.IntentHelp: func(_ context.Context, _ map[string]any) (*interfaces.HandlerResult, error) {
			called = true
			return &interfaces.HandlerResult{Success: true, Message: "here to help"}, nil
		},
	})

	result := executor.ExecuteLightweight(ctx, types.IntentHelp, nil)
	gt.Bool(t, called).True()
	gt.Bool(t, result.Success).True()

	tasks, err := repo.Task().ListByUser(ctx, "user-1", 10)
	gt.NoError(t, err)
	gt.Value(t, len(tasks)).Equal(0)
}
