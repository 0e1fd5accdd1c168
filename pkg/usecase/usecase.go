package usecase

import (
	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/brand"
	"github.com/atelier-lab/brandloom/pkg/service/memory"
	"github.com/atelier-lab/brandloom/pkg/service/rag"
)

// UseCases aggregates the chat pipeline and its collaborators
type UseCases struct {
	repo       interfaces.Repository
	provider   interfaces.LLMProvider
	engine     *rag.Engine
	quota      *brand.QuotaService
	userMemory *memory.UserMemory
	handlers   map[types.Intent]interfaces.ActionHandler
	planOver   map[types.Intent][]string

	classifier *Classifier
	planner    *Planner
	executor   *Executor
	resolver   *brand.Resolver

	Orchestrator *Orchestrator
}

// Option configures the UseCases aggregate
type Option func(*UseCases)

// WithQuota installs a per-brand quota safety net
func WithQuota(q *brand.QuotaService) Option {
	return func(uc *UseCases) {
		uc.quota = q
	}
}

// WithUserMemory injects the process-scoped personalization store
func WithUserMemory(m *memory.UserMemory) Option {
	return func(uc *UseCases) {
		uc.userMemory = m
	}
}

// WithHandlers installs the action handler registry
func WithHandlers(handlers map[types.Intent]interfaces.ActionHandler) Option {
	return func(uc *UseCases) {
		uc.handlers = handlers
	}
}

// WithPlanOverridesOption overrides static plan steps per intent
func WithPlanOverridesOption(overrides map[types.Intent][]string) Option {
	return func(uc *UseCases) {
		uc.planOver = overrides
	}
}

// New assembles the use case layer. The provider is typically a
// llm.LoadBalancer; the engine carries the selected embedding backend.
func New(repo interfaces.Repository, provider interfaces.LLMProvider, engine *rag.Engine, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		provider:   provider,
		engine:     engine,
		userMemory: memory.New(),
		handlers:   map[types.Intent]interfaces.ActionHandler{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.classifier = NewClassifier(provider)
	uc.resolver = brand.NewResolver(repo)
	uc.executor = NewExecutor(repo, uc.handlers)
	if uc.planOver != nil {
		uc.planner = NewPlanner(repo, WithPlanOverrides(uc.planOver))
	} else {
		uc.planner = NewPlanner(repo)
	}

	uc.Orchestrator = NewOrchestrator(
		repo,
		uc.classifier,
		engine,
		uc.resolver,
		uc.quota,
		uc.userMemory,
		uc.planner,
		uc.executor,
	)

	return uc
}

// Repository exposes the underlying repository for controllers
func (u *UseCases) Repository() interfaces.Repository {
	return u.repo
}

// Executor exposes the execution controller for approval flows
func (u *UseCases) Executor() *Executor {
	return u.executor
}

// Engine exposes the retrieval engine for health and retrieval endpoints
func (u *UseCases) Engine() *rag.Engine {
	return u.engine
}

// Provider exposes the LLM provider chain for health checks
func (u *UseCases) Provider() interfaces.LLMProvider {
	return u.provider
}
