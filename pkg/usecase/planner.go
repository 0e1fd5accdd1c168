package usecase

import (
	"context"
	"errors"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/repository/firestore"
	"github.com/atelier-lab/brandloom/pkg/repository/memory"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// unknownStep is the single plan step assigned to unrecognized intents.
// Planning must never fail on an intent the static map does not know.
const unknownStep = "unknown"

// defaultPlans maps each actionable intent to its ordered step names
var defaultPlans = map[types.Intent][]string{
	types.IntentGenerateContent: {"resolve_brand_voice", "draft_content", "review_against_guidelines"},
	types.IntentSchedulePost:    {"validate_schedule", "reserve_slot", "queue_publication"},
	types.IntentListContent:     {"query_content"},
	types.IntentDeleteContent:   {"verify_ownership", "delete_content"},
	types.IntentUpdateSettings:  {"validate_setting", "apply_setting"},
	types.IntentBrandSummary:    {"load_brand", "summarize_identity"},
}

// Planner creates durable task records for actionable intents
type Planner struct {
	repo  interfaces.Repository
	plans map[types.Intent][]string
}

// PlannerOption configures a Planner
type PlannerOption func(*Planner)

// WithPlanOverrides replaces plan steps for the given intents, leaving the
// rest of the static map intact
func WithPlanOverrides(overrides map[types.Intent][]string) PlannerOption {
	return func(p *Planner) {
		for intent, steps := range overrides {
			if len(steps) > 0 {
				p.plans[intent] = steps
			}
		}
	}
}

// NewPlanner creates a task planner over the repository
func NewPlanner(repo interfaces.Repository, opts ...PlannerOption) *Planner {
	p := &Planner{
		repo:  repo,
		plans: make(map[types.Intent][]string, len(defaultPlans)),
	}
	for intent, steps := range defaultPlans {
		p.plans[intent] = steps
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan persists a PLANNED task for the intent, scoped to the brand when
// one is resolved. Lightweight intents return nil without touching the
// repository. When an idempotency key is supplied and a task already
// carries it, that task is returned instead of creating a duplicate.
func (p *Planner) Plan(ctx context.Context, userID types.UserID, intent types.Intent, params map[string]any, brand *model.Brand, idempotencyKey string) (*model.TaskExecution, error) {
	if intent.IsLightweight() {
		return nil, nil
	}

	if idempotencyKey != "" {
		existing, err := p.repo.Task().GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil && !isNotFound(err) {
			return nil, goerr.Wrap(err, "failed to look up idempotency key")
		}
		if existing != nil {
			logging.From(ctx).Info("reusing task for idempotency key",
				"task_id", string(existing.ID),
				"status", existing.Status.String(),
			)
			return existing, nil
		}
	}

	steps, ok := p.plans[intent]
	if !ok {
		steps = []string{unknownStep}
	}

	task := &model.TaskExecution{
		UserID:         userID,
		Intent:         intent,
		Params:         params,
		Status:         types.TaskStatusPlanned,
		Plan:           steps,
		IdempotencyKey: idempotencyKey,
	}
	if brand != nil {
		task.BrandID = brand.ID
	}

	created, err := p.repo.Task().Create(ctx, task)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist planned task",
			goerr.V("user_id", userID),
			goerr.V("intent", intent),
		)
	}

	return created, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}
