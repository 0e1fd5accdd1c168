package firestore

import (
	"context"
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type taskDoc struct {
	ID             types.TaskID     `firestore:"ID"`
	UserID         types.UserID     `firestore:"UserID"`
	BrandID        types.BrandID    `firestore:"BrandID"`
	Intent         types.Intent     `firestore:"Intent"`
	Params         map[string]any   `firestore:"Params,omitempty"`
	Status         types.TaskStatus `firestore:"Status"`
	Plan           []string         `firestore:"Plan,omitempty"`
	Result         map[string]any   `firestore:"Result,omitempty"`
	ErrorMessage   string           `firestore:"ErrorMessage,omitempty"`
	IdempotencyKey string           `firestore:"IdempotencyKey,omitempty"`
	CreatedAt      time.Time        `firestore:"CreatedAt"`
	StartedAt      time.Time        `firestore:"StartedAt,omitempty"`
	CompletedAt    time.Time        `firestore:"CompletedAt,omitempty"`
}

func toTaskDoc(t *model.TaskExecution) *taskDoc {
	return &taskDoc{
		ID:             t.ID,
		UserID:         t.UserID,
		BrandID:        t.BrandID,
		Intent:         t.Intent,
		Params:         t.Params,
		Status:         t.Status,
		Plan:           t.Plan,
		Result:         t.Result,
		ErrorMessage:   t.ErrorMessage,
		IdempotencyKey: t.IdempotencyKey,
		CreatedAt:      t.CreatedAt,
		StartedAt:      t.StartedAt,
		CompletedAt:    t.CompletedAt,
	}
}

func fromTaskDoc(d *taskDoc) *model.TaskExecution {
	return &model.TaskExecution{
		ID:             d.ID,
		UserID:         d.UserID,
		BrandID:        d.BrandID,
		Intent:         d.Intent,
		Params:         d.Params,
		Status:         d.Status,
		Plan:           d.Plan,
		Result:         d.Result,
		ErrorMessage:   d.ErrorMessage,
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
	}
}

func docToTask(doc *firestore.DocumentSnapshot) (*model.TaskExecution, error) {
	var d taskDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromTaskDoc(&d), nil
}

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{
		client: client,
	}
}

func (r *taskRepository) tasksCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "tasks")
}

func (r *taskRepository) Create(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error) {
	if task.ID == "" {
		task.ID = types.NewTaskID()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	if task.IdempotencyKey != "" {
		existing, err := r.GetByIdempotencyKey(ctx, task.IdempotencyKey)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, goerr.Wrap(ErrDuplicateKey, "idempotency key already used",
				goerr.V("idempotency_key", task.IdempotencyKey),
				goerr.V("existing_task_id", existing.ID),
			)
		}
	}

	docRef := r.tasksCollection().Doc(string(task.ID))
	if _, err := docRef.Set(ctx, toTaskDoc(task)); err != nil {
		return nil, goerr.Wrap(err, "failed to create task", goerr.V("id", task.ID))
	}

	return task, nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.TaskExecution, error) {
	doc, err := r.tasksCollection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("id", id))
	}

	t, err := docToTask(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal task", goerr.V("id", id))
	}

	return t, nil
}

func (r *taskRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.TaskExecution, error) {
	iter := r.tasksCollection().
		Where("IdempotencyKey", "==", key).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "task not found for idempotency key",
			goerr.V("idempotency_key", key),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query task by idempotency key",
			goerr.V("idempotency_key", key),
		)
	}

	t, err := docToTask(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal task")
	}

	return t, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.TaskExecution) (*model.TaskExecution, error) {
	docRef := r.tasksCollection().Doc(string(task.ID))

	var updated *model.TaskExecution
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", task.ID))
			}
			return goerr.Wrap(err, "failed to get task")
		}

		existing, err := docToTask(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal task")
		}

		if existing.IsTerminal() {
			return goerr.Wrap(ErrTerminalState, "task is frozen",
				goerr.V("id", task.ID),
				goerr.V("status", existing.Status),
			)
		}

		if task.Status != existing.Status && !existing.Status.CanTransition(task.Status) {
			return goerr.Wrap(ErrBadTransition, "status transition not allowed",
				goerr.V("id", task.ID),
				goerr.V("from", existing.Status),
				goerr.V("to", task.Status),
			)
		}

		next := *task
		next.UserID = existing.UserID
		next.CreatedAt = existing.CreatedAt
		next.IdempotencyKey = existing.IdempotencyKey

		updated = &next
		return tx.Set(docRef, toTaskDoc(&next))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *taskRepository) ListByUser(ctx context.Context, userID types.UserID, limit int) ([]*model.TaskExecution, error) {
	iter := r.tasksCollection().
		Where("UserID", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	tasks := make([]*model.TaskExecution, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("user_id", userID))
		}

		t, err := docToTask(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal task")
		}
		tasks = append(tasks, t)
	}

	// Ordered client-side to avoid a composite index requirement
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}

	return tasks, nil
}
