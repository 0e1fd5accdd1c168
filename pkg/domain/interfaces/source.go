package interfaces

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// SourceRepository defines the interface for KnowledgeSource persistence.
// Every operation is scoped by brand ID; cross-brand access is impossible
// at this layer by construction.
type SourceRepository interface {
	// Create creates a new knowledge source under a brand
	Create(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error)

	// Get retrieves a knowledge source by ID within a brand
	Get(ctx context.Context, brandID types.BrandID, id types.SourceID) (*model.KnowledgeSource, error)

	// ListByBrand retrieves all knowledge sources of a brand
	ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.KnowledgeSource, error)

	// Update updates summary/hash/active flag of a knowledge source
	Update(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error)

	// Delete removes a knowledge source
	Delete(ctx context.Context, brandID types.BrandID, id types.SourceID) error
}
