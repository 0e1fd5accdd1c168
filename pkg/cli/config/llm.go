package config

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/service/llm"
	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// LLM holds CLI flags for the LLM provider chain. Providers are a closed
// set; each name in the chain must have its backend credentials configured.
type LLM struct {
	providers string

	geminiProject  string
	geminiLocation string
	geminiModel    string

	claudeAPIKey string
	claudeModel  string

	openaiBaseURL string
	openaiAPIKey  string
	openaiModel   string

	requestsPerMinute int
	maxRetries        int
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-providers",
			Usage:       "Ordered provider chain, comma separated (gemini, claude, openai)",
			Value:       "gemini",
			Sources:     cli.EnvVars("BRANDLOOM_LLM_PROVIDERS"),
			Destination: &l.providers,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("BRANDLOOM_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("BRANDLOOM_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       "gemini-2.0-flash",
			Sources:     cli.EnvVars("BRANDLOOM_GEMINI_MODEL"),
			Destination: &l.geminiModel,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("BRANDLOOM_CLAUDE_API_KEY"),
			Destination: &l.claudeAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Anthropic model name",
			Value:       string(anthropic.ModelClaudeSonnet4_20250514),
			Sources:     cli.EnvVars("BRANDLOOM_CLAUDE_MODEL"),
			Destination: &l.claudeModel,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Usage:       "Base URL for OpenAI-compatible API (OpenAI, Ollama, vLLM)",
			Sources:     cli.EnvVars("BRANDLOOM_OPENAI_BASE_URL"),
			Destination: &l.openaiBaseURL,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "API key for OpenAI-compatible API",
			Sources:     cli.EnvVars("BRANDLOOM_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "Model name for OpenAI-compatible API",
			Value:       "gpt-4o-mini",
			Sources:     cli.EnvVars("BRANDLOOM_OPENAI_MODEL"),
			Destination: &l.openaiModel,
		},
		&cli.IntFlag{
			Name:        "llm-requests-per-minute",
			Usage:       "Shared request rate limit across all providers (0 disables)",
			Value:       60,
			Sources:     cli.EnvVars("BRANDLOOM_LLM_REQUESTS_PER_MINUTE"),
			Destination: &l.requestsPerMinute,
		},
		&cli.IntFlag{
			Name:        "llm-max-retries",
			Usage:       "Retry attempts per provider before failing over",
			Value:       2,
			Sources:     cli.EnvVars("BRANDLOOM_LLM_MAX_RETRIES"),
			Destination: &l.maxRetries,
		},
	}
}

// GeminiClient creates the gollem Gemini client used for both generation
// and embedding. Returns nil when the project is not configured.
func (l *LLM) GeminiClient(ctx context.Context) (gollem.LLMClient, error) {
	if l.geminiProject == "" {
		return nil, nil
	}
	client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}

// Configure builds the provider chain and wraps it in a load balancer with
// per-provider circuit breakers and a shared rate limiter.
func (l *LLM) Configure(ctx context.Context) (*llm.LoadBalancer, error) {
	names := strings.Split(l.providers, ",")

	var providers []interfaces.LLMProvider
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		switch name {
		case "gemini":
			client, err := l.GeminiClient(ctx)
			if err != nil {
				return nil, err
			}
			if client == nil {
				return nil, goerr.New("gemini-project is required for the gemini provider")
			}
			providers = append(providers, llm.NewGeminiProvider(client, l.geminiModel))

		case "claude":
			if l.claudeAPIKey == "" {
				return nil, goerr.New("claude-api-key is required for the claude provider")
			}
			providers = append(providers, llm.NewClaudeProvider(l.claudeAPIKey, anthropic.Model(l.claudeModel)))

		case "openai":
			if l.openaiAPIKey == "" && l.openaiBaseURL == "" {
				return nil, goerr.New("openai-api-key or openai-base-url is required for the openai provider")
			}
			providers = append(providers, llm.NewOpenAIProvider(l.openaiBaseURL, l.openaiAPIKey, l.openaiModel))

		default:
			return nil, goerr.New("unknown LLM provider", goerr.V("provider", name))
		}
	}

	if len(providers) == 0 {
		return nil, goerr.New("at least one LLM provider is required")
	}

	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID()
	}
	logging.Default().Info("LLM provider chain configured",
		"providers", ids,
		"requests_per_minute", l.requestsPerMinute,
		"max_retries", l.maxRetries,
	)

	return llm.NewLoadBalancer(providers,
		llm.WithMaxRetries(l.maxRetries),
		llm.WithRateLimiter(llm.NewRateLimiter(l.requestsPerMinute)),
	), nil
}
