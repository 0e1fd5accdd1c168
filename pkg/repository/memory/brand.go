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

type brandRepository struct {
	mu     sync.RWMutex
	brands map[types.BrandID]*model.Brand
}

func newBrandRepository() *brandRepository {
	return &brandRepository{
		brands: make(map[types.BrandID]*model.Brand),
	}
}

func copyBrand(b *model.Brand) *model.Brand {
	copied := *b
	return &copied
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) (*model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyBrand(brand)
	if created.ID == "" {
		created.ID = types.NewBrandID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := created.Validate(); err != nil {
		return nil, err
	}

	r.brands[created.ID] = created
	return copyBrand(created), nil
}

func (r *brandRepository) Get(ctx context.Context, id types.BrandID) (*model.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brand, exists := r.brands[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "brand not found", goerr.V("id", id))
	}

	return copyBrand(brand), nil
}

func (r *brandRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Brand
	for _, b := range r.brands {
		if b.UserID == userID {
			result = append(result, copyBrand(b))
		}
	}

	// Oldest first: "first brand" resolution depends on creation order
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) (*model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.brands[brand.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "brand not found", goerr.V("id", brand.ID))
	}

	// Brand identity is immutable once created
	if brand.UserID != "" && brand.UserID != existing.UserID {
		return nil, goerr.Wrap(ErrImmutableField, "brand owner cannot change", goerr.V("id", brand.ID))
	}

	updated := copyBrand(existing)
	if brand.Name != "" {
		updated.Name = brand.Name
	}
	updated.Tone = brand.Tone
	updated.Guidelines = brand.Guidelines
	updated.Audience = brand.Audience
	updated.CoreValues = brand.CoreValues
	updated.UpdatedAt = time.Now().UTC()

	r.brands[updated.ID] = updated
	return copyBrand(updated), nil
}
