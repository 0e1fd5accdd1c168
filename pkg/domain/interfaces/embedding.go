package interfaces

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// EmbeddingRepository defines the interface for DocumentEmbedding
// persistence. All queries filter by brand ID.
type EmbeddingRepository interface {
	// Create persists one embedded chunk
	Create(ctx context.Context, brandID types.BrandID, embedding *model.DocumentEmbedding) (*model.DocumentEmbedding, error)

	// ListByBrand retrieves all embedded chunks of a brand
	ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.DocumentEmbedding, error)

	// CountByBrand returns the number of stored chunks for a brand
	CountByBrand(ctx context.Context, brandID types.BrandID) (int, error)

	// ExistsByHash reports whether a chunk with the content hash is already
	// stored for the brand (idempotent re-embedding)
	ExistsByHash(ctx context.Context, brandID types.BrandID, contentHash string) (bool, error)

	// DeleteBySource removes all chunks produced from a named source,
	// used when source content changes and must be re-embedded
	DeleteBySource(ctx context.Context, brandID types.BrandID, sourceName string) error
}
