package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

const defaultClaudeMaxTokens = 4096

// ClaudeProvider calls the Anthropic Messages API directly
type ClaudeProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

var _ interfaces.LLMProvider = &ClaudeProvider{}

// NewClaudeProvider creates a Claude-backed provider
func NewClaudeProvider(apiKey string, model anthropic.Model) *ClaudeProvider {
	return &ClaudeProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *ClaudeProvider) ID() string {
	return "claude/" + string(p.model)
}

func (p *ClaudeProvider) Generate(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	prompt := req.Prompt
	if req.JSONMode {
		// The Messages API has no JSON response mode; the instruction plus
		// the caller's defensive parsing cover it
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}
	if req.Temperature >= 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "anthropic API call failed", goerr.V("provider", p.ID()))
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	if text == "" {
		return "", goerr.Wrap(ErrEmptyResponse, "no text blocks in response", goerr.V("provider", p.ID()))
	}

	return text, nil
}

func (p *ClaudeProvider) HealthCheck(ctx context.Context) bool {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 8,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	return err == nil
}
