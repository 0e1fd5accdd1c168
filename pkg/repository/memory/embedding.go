package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

type embeddingRepository struct {
	mu         sync.RWMutex
	embeddings map[types.BrandID][]*model.DocumentEmbedding
}

func newEmbeddingRepository() *embeddingRepository {
	return &embeddingRepository{
		embeddings: make(map[types.BrandID][]*model.DocumentEmbedding),
	}
}

func copyEmbedding(e *model.DocumentEmbedding) *model.DocumentEmbedding {
	copied := *e
	if e.Vector != nil {
		copied.Vector = make([]float32, len(e.Vector))
		copy(copied.Vector, e.Vector)
	}
	if e.Metadata != nil {
		copied.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

func (r *embeddingRepository) Create(ctx context.Context, brandID types.BrandID, embedding *model.DocumentEmbedding) (*model.DocumentEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyEmbedding(embedding)
	if created.ID == "" {
		created.ID = types.NewEmbeddingID()
	}
	created.BrandID = brandID
	created.CreatedAt = time.Now().UTC()

	r.embeddings[brandID] = append(r.embeddings[brandID], created)
	return copyEmbedding(created), nil
}

func (r *embeddingRepository) ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.DocumentEmbedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.embeddings[brandID]
	result := make([]*model.DocumentEmbedding, 0, len(stored))
	for _, e := range stored {
		result = append(result, copyEmbedding(e))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *embeddingRepository) CountByBrand(ctx context.Context, brandID types.BrandID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.embeddings[brandID]), nil
}

func (r *embeddingRepository) ExistsByHash(ctx context.Context, brandID types.BrandID, contentHash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.embeddings[brandID] {
		if e.ContentHash == contentHash {
			return true, nil
		}
	}
	return false, nil
}

func (r *embeddingRepository) DeleteBySource(ctx context.Context, brandID types.BrandID, sourceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.embeddings[brandID]
	kept := stored[:0]
	for _, e := range stored {
		if e.SourceName != sourceName {
			kept = append(kept, e)
		}
	}
	r.embeddings[brandID] = kept
	return nil
}
