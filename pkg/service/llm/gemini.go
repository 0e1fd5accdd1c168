package llm

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// GeminiProvider adapts a gollem LLM client to the provider contract.
// Sessions are created per request so system prompt and content type stay
// request-scoped.
type GeminiProvider struct {
	client gollem.LLMClient
	model  string
}

var _ interfaces.LLMProvider = &GeminiProvider{}

// NewGeminiProvider wraps an already-constructed gollem client. The model
// name is only used for breaker identity; the client itself carries the
// actual model configuration.
func NewGeminiProvider(client gollem.LLMClient, model string) *GeminiProvider {
	return &GeminiProvider{
		client: client,
		model:  model,
	}
}

func (p *GeminiProvider) ID() string {
	return "gemini/" + p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	opts := []gollem.SessionOption{}
	if req.SystemPrompt != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(req.SystemPrompt))
	}
	if req.JSONMode {
		opts = append(opts, gollem.WithSessionContentType(gollem.ContentTypeJSON))
	}

	session, err := p.client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.V("provider", p.ID()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(req.Prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("provider", p.ID()))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "no text in response", goerr.V("provider", p.ID()))
	}

	return resp.Texts[0], nil
}

func (p *GeminiProvider) HealthCheck(ctx context.Context) bool {
	session, err := p.client.NewSession(ctx)
	if err != nil {
		return false
	}
	resp, err := session.GenerateContent(ctx, gollem.Text("ping"))
	if err != nil {
		return false
	}
	return resp != nil && len(resp.Texts) > 0
}
