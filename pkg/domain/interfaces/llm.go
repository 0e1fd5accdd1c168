package interfaces

import "context"

// GenerateRequest is one generation request against an LLM provider
type GenerateRequest struct {
	SystemPrompt string
	Prompt       string
	// Temperature of 0 forces deterministic sampling where the backend
	// supports it. Negative values mean provider default.
	Temperature float64
	MaxTokens   int
	// JSONMode asks the backend for a JSON object response. The caller must
	// still parse defensively; not every backend honors it strictly.
	JSONMode bool
}

// LLMProvider is the uniform contract over LLM backends. Implementations
// are a closed set selected by an explicit factory; see pkg/service/llm.
type LLMProvider interface {
	// ID returns a stable provider identity ("name/model"), used as the
	// circuit breaker key
	ID() string

	// Generate produces a completion for the request
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// HealthCheck reports whether the backend is reachable and responding
	HealthCheck(ctx context.Context) bool
}
