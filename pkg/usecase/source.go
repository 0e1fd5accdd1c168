package usecase

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

// UpsertSource creates or refreshes a knowledge source by name. When the
// content hash changed, the source's stale embeddings are deleted so the
// next embed run regenerates them; unchanged content is a no-op.
func (u *UseCases) UpsertSource(ctx context.Context, brandID types.BrandID, name string, sourceType types.SourceType, content string) (*model.KnowledgeSource, error) {
	if brandID == "" || name == "" {
		return nil, goerr.New("brand ID and source name are required")
	}

	hash := model.HashContent(content)

	sources, err := u.repo.Source().ListByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge sources", goerr.V("brand_id", brandID))
	}

	var existing *model.KnowledgeSource
	for _, s := range sources {
		if s.Name == name {
			existing = s
			break
		}
	}

	if existing == nil {
		created, err := u.repo.Source().Create(ctx, brandID, &model.KnowledgeSource{
			Name:        name,
			SourceType:  sourceType,
			Summary:     content,
			ContentHash: hash,
			Active:      true,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create knowledge source", goerr.V("name", name))
		}
		return created, nil
	}

	if existing.ContentHash == hash {
		return existing, nil
	}

	existing.Summary = content
	existing.ContentHash = hash
	existing.Active = true
	updated, err := u.repo.Source().Update(ctx, brandID, existing)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update knowledge source", goerr.V("name", name))
	}

	// Stale vectors would keep serving the old content
	if err := u.repo.Embedding().DeleteBySource(ctx, brandID, name); err != nil {
		logging.From(ctx).Warn("failed to drop stale embeddings",
			"brand_id", string(brandID),
			"source", name,
			"error", err.Error(),
		)
	}

	return updated, nil
}
