package interfaces

import "context"

// HandlerResult is the outcome reported by an action handler
type HandlerResult struct {
	// Success defaults to true when a handler returns a nil result
	Success bool
	Message string
	Data    any
	// NeedsApproval parks the task in WAITING_APPROVAL instead of
	// publishing; an external approval call resumes it
	NeedsApproval bool
	// Internal marks a result synthesized from a handler error or panic
	// rather than reported by the handler itself. The raw text is kept on
	// the task record; user-facing responses replace it with an apology.
	Internal bool
}

// ActionHandler executes the business side effect of one intent. Handlers
// are supplied by the caller as an explicit map from intent name to handler;
// this core never owns business logic.
type ActionHandler func(ctx context.Context, params map[string]any) (*HandlerResult, error)
