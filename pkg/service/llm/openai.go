package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/safe"
)

const defaultOpenAITimeout = 120 * time.Second

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
// This covers OpenAI itself plus self-hosted gateways that speak the same
// wire format.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ interfaces.LLMProvider = &OpenAIProvider{}

// OpenAIOption configures an OpenAIProvider
type OpenAIOption func(*OpenAIProvider)

// WithHTTPClient injects the HTTP client, used by tests
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.httpClient = c
	}
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
// An empty baseURL defaults to the OpenAI API.
func NewOpenAIProvider(baseURL, apiKey, model string, opts ...OpenAIOption) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	p := &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: defaultOpenAITimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenAIProvider) ID() string {
	return "openai/" + p.model
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	messages := []chatMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.Temperature >= 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal chat completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", goerr.Wrap(err, "chat completion request failed", goerr.V("provider", p.ID()))
	}
	defer safe.Close(ctx, httpResp.Body)

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read response body")
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", goerr.New("chat completion returned non-OK status",
			goerr.V("provider", p.ID()),
			goerr.V("status", httpResp.StatusCode),
			goerr.V("body", truncateForLog(string(respBody))),
		)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to parse chat completion response", goerr.V("provider", p.ID()))
	}
	if parsed.Error != nil {
		return "", goerr.New("chat completion API error",
			goerr.V("provider", p.ID()),
			goerr.V("type", parsed.Error.Type),
			goerr.V("message", parsed.Error.Message),
		)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", goerr.Wrap(ErrEmptyResponse, "no choices in response", goerr.V("provider", p.ID()))
	}

	return parsed.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer safe.Close(ctx, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func truncateForLog(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
