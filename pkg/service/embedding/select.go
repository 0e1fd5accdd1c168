package embedding

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// Select picks the embedding backend for a user. Order of precedence:
// explicit override, then the pro tier's model backend when available,
// then the local fallback. A pro user without a configured model backend
// silently degrades to local, with a warning logged once per call site.
func Select(ctx context.Context, override interfaces.Embedder, tier types.PlanTier, pro interfaces.Embedder) interfaces.Embedder {
	if override != nil {
		return override
	}

	if tier.Normalize() == types.PlanTierPro {
		if pro != nil {
			return pro
		}
		logging.From(ctx).Warn("pro tier requested but no embedding backend configured, falling back to local",
			"tier", string(tier),
		)
	}

	return NewLocalEmbedder()
}
