package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func runBrandRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Brand().Create(ctx, &model.Brand{
			UserID:     "user-1",
			Name:       "Acme",
			Tone:       "direct",
			Guidelines: "short sentences, no jargon",
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.BrandID(""))
		gt.Value(t, created.Name).Equal("Acme")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Create without owner fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Brand().Create(ctx, &model.Brand{Name: "Orphan"})
		gt.Error(t, err)
	})

	t.Run("Get retrieves existing brand", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Brand().Create(ctx, &model.Brand{
			UserID: "user-1",
			Name:   "Acme",
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Brand().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.UserID).Equal(created.UserID)
	})

	t.Run("Get returns not-found for unknown brand", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Brand().Get(ctx, types.NewBrandID())
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListByUser returns own brands oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Brand().Create(ctx, &model.Brand{UserID: "user-1", Name: "First"})
		gt.NoError(t, err).Required()
		_, err = repo.Brand().Create(ctx, &model.Brand{UserID: "user-1", Name: "Second"})
		gt.NoError(t, err).Required()
		_, err = repo.Brand().Create(ctx, &model.Brand{UserID: "user-2", Name: "Other"})
		gt.NoError(t, err).Required()

		brands, err := repo.Brand().ListByUser(ctx, "user-1")
		gt.NoError(t, err).Required()
		gt.Array(t, brands).Length(2)
		gt.Value(t, brands[0].ID).Equal(first.ID)
	})

	t.Run("Update mutates identity fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Brand().Create(ctx, &model.Brand{
			UserID: "user-1",
			Name:   "Acme",
			Tone:   "direct",
		})
		gt.NoError(t, err).Required()

		created.Tone = "playful"
		created.Audience = "developers"
		updated, err := repo.Brand().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Tone).Equal("playful")
		gt.Value(t, updated.Audience).Equal("developers")
		gt.Value(t, updated.UserID).Equal(created.UserID)
	})

	t.Run("Update cannot change the owner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Brand().Create(ctx, &model.Brand{
			UserID: "user-1",
			Name:   "Acme",
		})
		gt.NoError(t, err).Required()

		created.UserID = "user-2"
		_, err = repo.Brand().Update(ctx, created)
		gt.Error(t, err)
		gt.Bool(t, isImmutableField(err)).True()
	})
}

func TestBrandRepository_Memory(t *testing.T) {
	runBrandRepositoryTest(t, newMemoryRepo)
}

func TestBrandRepository_Firestore(t *testing.T) {
	runBrandRepositoryTest(t, newFirestoreRepo)
}
