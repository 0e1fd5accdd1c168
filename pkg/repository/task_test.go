package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func runTaskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create defaults to CREATED status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID: "user-1",
			Intent: types.IntentGenerateContent,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.TaskID(""))
		gt.Value(t, created.Status).Equal(types.TaskStatusCreated)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("idempotency key must be unique", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID:         "user-1",
			Intent:         types.IntentGenerateContent,
			IdempotencyKey: "req-1",
		})
		gt.NoError(t, err).Required()

		_, err = repo.Task().Create(ctx, &model.TaskExecution{
			UserID:         "user-1",
			Intent:         types.IntentGenerateContent,
			IdempotencyKey: "req-1",
		})
		gt.Error(t, err)
		gt.Bool(t, isDuplicateKey(err)).True()

		found, err := repo.Task().GetByIdempotencyKey(ctx, "req-1")
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(created.ID)
	})

	t.Run("GetByIdempotencyKey for unknown key is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Task().GetByIdempotencyKey(ctx, "absent")
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Update walks the transition table", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID: "user-1",
			Intent: types.IntentGenerateContent,
			Status: types.TaskStatusPlanned,
			Plan:   []string{"build_brief", "generate_copy"},
		})
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusExecuting
		task, err = repo.Task().Update(ctx, task)
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusPublished
		task, err = repo.Task().Update(ctx, task)
		gt.NoError(t, err).Required()
		gt.Value(t, task.Status).Equal(types.TaskStatusPublished)
	})

	t.Run("skipping a state is rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID: "user-1",
			Intent: types.IntentGenerateContent,
			Status: types.TaskStatusPlanned,
		})
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusPublished
		_, err = repo.Task().Update(ctx, task)
		gt.Error(t, err)
		gt.Bool(t, isBadTransition(err)).True()
	})

	t.Run("terminal tasks are frozen", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID: "user-1",
			Intent: types.IntentGenerateContent,
			Status: types.TaskStatusPlanned,
		})
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusExecuting
		task, err = repo.Task().Update(ctx, task)
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusFailed
		task.ErrorMessage = "handler exploded"
		task, err = repo.Task().Update(ctx, task)
		gt.NoError(t, err).Required()

		task.ErrorMessage = "rewritten history"
		_, err = repo.Task().Update(ctx, task)
		gt.Error(t, err)
		gt.Bool(t, isTerminalState(err)).True()
	})

	t.Run("Update preserves owner and creation metadata", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID:         "user-1",
			Intent:         types.IntentGenerateContent,
			Status:         types.TaskStatusPlanned,
			IdempotencyKey: "req-keep",
		})
		gt.NoError(t, err).Required()

		task.Status = types.TaskStatusExecuting
		task.UserID = "user-2"
		task.IdempotencyKey = "req-overwritten"
		updated, err := repo.Task().Update(ctx, task)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.UserID).Equal(types.UserID("user-1"))
		gt.Value(t, updated.IdempotencyKey).Equal("req-keep")
	})

	t.Run("ListByUser returns newest first with limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := repo.Task().Create(ctx, &model.TaskExecution{
				UserID: "user-1",
				Intent: types.IntentGenerateContent,
			})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Task().Create(ctx, &model.TaskExecution{
			UserID: "user-2",
			Intent: types.IntentGenerateContent,
		})
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().ListByUser(ctx, "user-1", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
		for _, task := range tasks {
			gt.Value(t, task.UserID).Equal(types.UserID("user-1"))
		}
		gt.Bool(t, tasks[0].CreatedAt.Before(tasks[1].CreatedAt)).False()
	})
}

func TestTaskRepository_Memory(t *testing.T) {
	runTaskRepositoryTest(t, newMemoryRepo)
}

func TestTaskRepository_Firestore(t *testing.T) {
	runTaskRepositoryTest(t, newFirestoreRepo)
}
