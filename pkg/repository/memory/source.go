package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type sourceKey struct {
	brandID types.BrandID
	id      types.SourceID
}

type sourceRepository struct {
	mu      sync.RWMutex
	sources map[sourceKey]*model.KnowledgeSource
}

func newSourceRepository() *sourceRepository {
	return &sourceRepository{
		sources: make(map[sourceKey]*model.KnowledgeSource),
	}
}

func copySource(s *model.KnowledgeSource) *model.KnowledgeSource {
	copied := *s
	return &copied
}

func (r *sourceRepository) Create(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copySource(source)
	if created.ID == "" {
		created.ID = types.NewSourceID()
	}
	created.BrandID = brandID
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := created.Validate(); err != nil {
		return nil, err
	}

	r.sources[sourceKey{brandID, created.ID}] = created
	return copySource(created), nil
}

func (r *sourceRepository) Get(ctx context.Context, brandID types.BrandID, id types.SourceID) (*model.KnowledgeSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[sourceKey{brandID, id}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "knowledge source not found",
			goerr.V("brand_id", brandID),
			goerr.V("id", id),
		)
	}

	return copySource(source), nil
}

func (r *sourceRepository) ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.KnowledgeSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.KnowledgeSource
	for key, s := range r.sources {
		if key.brandID == brandID {
			result = append(result, copySource(s))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *sourceRepository) Update(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sourceKey{brandID, source.ID}
	existing, exists := r.sources[key]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "knowledge source not found",
			goerr.V("brand_id", brandID),
			goerr.V("id", source.ID),
		)
	}

	updated := copySource(source)
	updated.BrandID = existing.BrandID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.sources[key] = updated
	return copySource(updated), nil
}

func (r *sourceRepository) Delete(ctx context.Context, brandID types.BrandID, id types.SourceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sourceKey{brandID, id}
	if _, exists := r.sources[key]; !exists {
		return goerr.Wrap(ErrNotFound, "knowledge source not found",
			goerr.V("brand_id", brandID),
			goerr.V("id", id),
		)
	}

	delete(r.sources, key)
	return nil
}
