package interfaces

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// BrandRepository defines the interface for Brand data persistence
type BrandRepository interface {
	// Create creates a new brand. The identity fields (ID, UserID) are
	// immutable after creation.
	Create(ctx context.Context, brand *model.Brand) (*model.Brand, error)

	// Get retrieves a brand by ID
	Get(ctx context.Context, id types.BrandID) (*model.Brand, error)

	// ListByUser retrieves all brands owned by a user, oldest first
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Brand, error)

	// Update mutates the guideline/tone/audience/core-values fields only
	Update(ctx context.Context, brand *model.Brand) (*model.Brand, error)
}
