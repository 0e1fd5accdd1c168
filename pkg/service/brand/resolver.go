package brand

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNoBrand is returned when a user owns no brands
var ErrNoBrand = goerr.New("user has no brand")

// Resolver resolves the active brand of a user. A user may own several
// brands; the oldest one is treated as active until explicit brand
// switching exists.
type Resolver struct {
	repo interfaces.Repository
}

func NewResolver(repo interfaces.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the active brand for the user, or ErrNoBrand
func (r *Resolver) Resolve(ctx context.Context, userID types.UserID) (*model.Brand, error) {
	brands, err := r.repo.Brand().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list brands", goerr.V("user_id", userID))
	}
	if len(brands) == 0 {
		return nil, goerr.Wrap(ErrNoBrand, "no brand for user", goerr.V("user_id", userID))
	}
	return brands[0], nil
}

// ResolveAll returns every brand the user owns, oldest first
func (r *Resolver) ResolveAll(ctx context.Context, userID types.UserID) ([]*model.Brand, error) {
	brands, err := r.repo.Brand().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list brands", goerr.V("user_id", userID))
	}
	return brands, nil
}
