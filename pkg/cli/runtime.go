package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/cli/config"
	"github.com/atelier-lab/brandloom/pkg/service/rag"
	"github.com/atelier-lab/brandloom/pkg/usecase"
	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// runtime bundles the shared backend configuration every command needs:
// repository, provider chain, embedding backend, quota and plan overrides.
type runtime struct {
	repoCfg   config.Repository
	llmCfg    config.LLM
	embedCfg  config.Embedding
	limitsCfg config.Limits
	plansCfg  config.Plans
}

func (r *runtime) flags() []cli.Flag {
	flags := r.repoCfg.Flags()
	flags = append(flags, r.llmCfg.Flags()...)
	flags = append(flags, r.embedCfg.Flags()...)
	flags = append(flags, r.limitsCfg.Flags()...)
	flags = append(flags, r.plansCfg.Flags()...)
	return flags
}

// build assembles the full use case stack. The returned closer releases the
// repository connection.
func (r *runtime) build(ctx context.Context) (*usecase.UseCases, func(), error) {
	repo, err := r.repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	balancer, err := r.llmCfg.Configure(ctx)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure LLM providers")
	}

	geminiClient, err := r.llmCfg.GeminiClient(ctx)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	embedder, err := r.embedCfg.Configure(ctx, geminiClient)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to configure embedding backend")
	}

	overrides, err := r.plansCfg.Configure()
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to load plan overrides")
	}

	engine := rag.New(repo, embedder)

	opts := []usecase.Option{
		usecase.WithQuota(r.limitsCfg.Configure()),
	}
	if overrides != nil {
		opts = append(opts, usecase.WithPlanOverridesOption(overrides))
	}

	return usecase.New(repo, balancer, engine, opts...), closer, nil
}
