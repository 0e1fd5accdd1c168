package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/brand"
	"github.com/atelier-lab/brandloom/pkg/service/memory"
	"github.com/atelier-lab/brandloom/pkg/service/rag"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

const (
	offlineMessage = "I'm having trouble reaching my language model right now. Please try again in a moment."

	introductionMessage = "I'm your brand content assistant. I help you draft on-brand content, schedule posts, and keep everything aligned with your brand voice. Ask me anything or tell me what you'd like to create."

	loginRequiredMessage = "Please log in to do that. Once you're signed in I can create, schedule, and manage content for your brand."

	ragRefusalResponse = "I don't have enough brand knowledge to answer that reliably. Add more knowledge sources or rephrase the question."

	internalFailureDetail = "something went wrong on my end. Please try again in a moment"
)

// ChatRequest is one conversational turn entering the orchestrator
type ChatRequest struct {
	UserID          types.UserID
	Message         string
	History         []model.ChatTurn
	IsAuthenticated bool
	// BrandMemory enables injecting brand identity summaries into the
	// personalization context
	BrandMemory bool
	// ForceRAG refuses to answer when retrieval is insufficient instead of
	// letting the model improvise
	ForceRAG       bool
	Deterministic  bool
	IdempotencyKey string
}

// ChatResponse is the JSON-shaped outcome of one chat turn
type ChatResponse struct {
	Intent        types.Intent `json:"intent"`
	Response      string       `json:"response"`
	ActionSuccess bool         `json:"action_success"`
	ActionData    any          `json:"action_data,omitempty"`
	TaskID        types.TaskID `json:"task_id,omitempty"`
}

// Orchestrator wires classification, retrieval, planning, and execution
// into one chat entry point. All mutable cross-request state lives in the
// injected collaborators; the orchestrator itself is stateless.
type Orchestrator struct {
	repo       interfaces.Repository
	classifier *Classifier
	engine     *rag.Engine
	resolver   *brand.Resolver
	quota      *brand.QuotaService
	userMemory *memory.UserMemory
	executor   *Executor
	planner    *Planner
}

// NewOrchestrator assembles the chat pipeline from its collaborators
func NewOrchestrator(
	repo interfaces.Repository,
	classifier *Classifier,
	engine *rag.Engine,
	resolver *brand.Resolver,
	quota *brand.QuotaService,
	userMemory *memory.UserMemory,
	planner *Planner,
	executor *Executor,
) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		classifier: classifier,
		engine:     engine,
		resolver:   resolver,
		quota:      quota,
		userMemory: userMemory,
		planner:    planner,
		executor:   executor,
	}
}

// Chat handles one user message end to end. The user always receives a
// natural-language response; internal failures degrade to canned messages
// and never surface as raw errors.
func (o *Orchestrator) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.UserID == "" || req.Message == "" {
		return nil, goerr.New("user ID and message are required")
	}
	logger := logging.From(ctx)

	contextParts := []string{}
	if block := o.userMemory.ContextBlock(req.UserID); block != "" {
		contextParts = append(contextParts, block)
	}

	if req.BrandMemory && req.IsAuthenticated {
		brands, err := o.resolver.ResolveAll(ctx, req.UserID)
		if err != nil {
			logger.Warn("brand memory lookup failed", "error", err.Error())
		}
		for _, b := range brands {
			contextParts = append(contextParts, b.IdentitySummary())
		}
	}

	activeBrand := o.activeBrand(ctx, req)
	if activeBrand != nil {
		ragCtx, err := o.engine.BuildContext(ctx, activeBrand.ID, req.Message, req.ForceRAG)
		if err != nil {
			logger.Warn("RAG context build failed", "error", err.Error())
		} else if ragCtx.Refused {
			// Hallucination guard: no LLM call, no task
			o.record(ctx, req, types.IntentGeneralChat, ragRefusalResponse)
			return &ChatResponse{
				Intent:        types.IntentGeneralChat,
				Response:      ragRefusalResponse,
				ActionSuccess: false,
			}, nil
		} else if ragCtx.ContextBlock != "" {
			contextParts = append(contextParts, "Brand knowledge:\n"+ragCtx.ContextBlock)
		}
	} else if req.ForceRAG {
		o.record(ctx, req, types.IntentGeneralChat, ragRefusalResponse)
		return &ChatResponse{
			Intent:        types.IntentGeneralChat,
			Response:      ragRefusalResponse,
			ActionSuccess: false,
		}, nil
	}

	classification, err := o.classifier.Classify(ctx, req.Message, strings.Join(contextParts, "\n\n"), req.History, req.Deterministic)
	if err != nil {
		logger.Warn("classification failed, answering offline", "error", err.Error())
		response := offlineMessage
		if isIdentityQuestion(req.Message) {
			response = introductionMessage
		}
		o.record(ctx, req, types.IntentGeneralChat, response)
		return &ChatResponse{
			Intent:        types.IntentGeneralChat,
			Response:      response,
			ActionSuccess: false,
		}, nil
	}

	intent := classification.Intent

	if !req.IsAuthenticated && !intent.GuestAllowed() {
		o.record(ctx, req, intent, loginRequiredMessage)
		return &ChatResponse{
			Intent:        intent,
			Response:      loginRequiredMessage,
			ActionSuccess: false,
			ActionData:    map[string]any{"requires_login": true},
		}, nil
	}

	if activeBrand != nil && !intent.IsLightweight() && o.quota != nil {
		decision := o.quota.Check(activeBrand.ID, 0)
		if !decision.Allowed {
			o.record(ctx, req, intent, decision.Reason)
			return &ChatResponse{
				Intent:        intent,
				Response:      "You've hit this brand's usage limit. " + decision.Reason + ".",
				ActionSuccess: false,
				ActionData: map[string]any{
					"quota_exceeded":   true,
					"window_resets_at": decision.WindowResetsAt,
				},
			}, nil
		}
		o.quota.Consume(activeBrand.ID, 0)
	}

	response := &ChatResponse{
		Intent:        intent,
		Response:      classification.Response,
		ActionSuccess: true,
	}

	var result *interfaces.HandlerResult
	if intent.IsLightweight() {
		result = o.executor.ExecuteLightweight(ctx, intent, classification.Params)
	} else {
		task, err := o.planner.Plan(ctx, req.UserID, intent, classification.Params, activeBrand, req.IdempotencyKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to plan task")
		}
		if task != nil && !task.IsTerminal() {
			task, result, err = o.executor.Execute(ctx, task)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to execute task")
			}
			response.TaskID = task.ID
		}
	}

	if result != nil {
		response.ActionSuccess = result.Success
		response.ActionData = result.Data
		if !result.Success {
			// Handler-reported messages are written for the user. Error and
			// panic text is not; it stays on the task record only.
			detail := result.Message
			if result.Internal {
				detail = internalFailureDetail
			}
			if detail != "" {
				response.Response = composeFailure(classification.Response, detail)
			}
		} else if result.Data != nil && !intent.IsLightweight() {
			response.Response = mergeData(classification.Response, result.Data)
		}
	}

	o.record(ctx, req, intent, response.Response)

	return response, nil
}

// activeBrand resolves the user's brand for RAG and task scoping, or nil
func (o *Orchestrator) activeBrand(ctx context.Context, req *ChatRequest) *model.Brand {
	if !req.IsAuthenticated {
		return nil
	}
	b, err := o.resolver.Resolve(ctx, req.UserID)
	if err != nil {
		return nil
	}
	return b
}

// record updates user memory and appends the turn to the durable chat log.
// Recording happens on every outcome, including denials.
func (o *Orchestrator) record(ctx context.Context, req *ChatRequest, intent types.Intent, response string) {
	o.userMemory.Record(req.UserID, intent, topicOf(req.Message))

	for _, msg := range []*model.ChatMessage{
		{UserID: req.UserID, Role: model.ChatRoleUser, Content: req.Message, Intent: intent},
		{UserID: req.UserID, Role: model.ChatRoleAssistant, Content: response, Intent: intent},
	} {
		if _, err := o.repo.History().Create(ctx, msg); err != nil {
			logging.From(ctx).Warn("failed to persist chat message", "error", err.Error())
		}
	}
}

// topicOf reduces a message to a short topic string for memory
func topicOf(message string) string {
	words := strings.Fields(message)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

var identityPhrases = []string{
	"who are you",
	"what are you",
	"introduce yourself",
	"what can you do",
	"what do you do",
}

func isIdentityQuestion(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range identityPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func composeFailure(base, detail string) string {
	if base == "" {
		return "I couldn't complete that: " + detail
	}
	return base + "\n\nI couldn't complete that: " + detail
}

// mergeData appends structured handler data to the natural-language
// response: lists become bullets, maps become key/value lines
func mergeData(base string, data any) string {
	rendered := renderData(data)
	if rendered == "" {
		return base
	}
	if base == "" {
		return rendered
	}
	return base + "\n\n" + rendered
}

func renderData(data any) string {
	switch v := data.(type) {
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, fmt.Sprintf("- %v", item))
		}
		return strings.Join(lines, "\n")
	case []string:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, "- "+item)
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, v[k]))
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}
