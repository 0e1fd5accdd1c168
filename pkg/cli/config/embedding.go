package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/embedding"
)

// Embedding holds CLI flags for the embedding backend selection
type Embedding struct {
	backend string
	tier    string
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-backend",
			Usage:       "Embedding backend (auto, local or gemini). auto selects by plan tier",
			Value:       "auto",
			Sources:     cli.EnvVars("BRANDLOOM_EMBEDDING_BACKEND"),
			Destination: &e.backend,
		},
		&cli.StringFlag{
			Name:        "plan-tier",
			Usage:       "Subscription tier used by auto backend selection (free or pro)",
			Value:       "free",
			Sources:     cli.EnvVars("BRANDLOOM_PLAN_TIER"),
			Destination: &e.tier,
		},
	}
}

// Configure selects the embedding backend. The gemini client may be nil;
// auto selection degrades to the local embedder when the pro backend is
// unavailable.
func (e *Embedding) Configure(ctx context.Context, geminiClient gollem.LLMClient) (interfaces.Embedder, error) {
	var pro interfaces.Embedder
	if geminiClient != nil {
		pro = embedding.NewGeminiEmbedder(geminiClient)
	}

	switch e.backend {
	case "local":
		return embedding.Select(ctx, embedding.NewLocalEmbedder(), types.PlanTier(e.tier), pro), nil
	case "gemini":
		if pro == nil {
			return nil, goerr.New("gemini-project is required for the gemini embedding backend")
		}
		return embedding.Select(ctx, pro, types.PlanTier(e.tier), pro), nil
	case "auto", "":
		return embedding.Select(ctx, nil, types.PlanTier(e.tier), pro), nil
	default:
		return nil, goerr.New("invalid embedding backend", goerr.V("backend", e.backend))
	}
}
