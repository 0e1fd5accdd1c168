package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func newChunk(source, text string) *model.DocumentEmbedding {
	return &model.DocumentEmbedding{
		ChunkText:   text,
		Vector:      []float32{0.1, 0.2, 0.3},
		SourceName:  source,
		SourceType:  types.SourceTypeDocument,
		ContentHash: model.HashContent(text),
	}
}

func runEmbeddingRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and ListByBrand", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		b := seedBrand(t, repo, "user-1")

		created, err := repo.Embedding().Create(ctx, b.ID, newChunk("catalog", "routers and switches"))
		gt.NoError(t, err).Required()
		gt.Value(t, created.BrandID).Equal(b.ID)
		gt.Value(t, created.ID).NotEqual(types.EmbeddingID(""))

		chunks, err := repo.Embedding().ListByBrand(ctx, b.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(1)
		gt.Value(t, chunks[0].ChunkText).Equal("routers and switches")
	})

	t.Run("chunks never leak across brands", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mine := seedBrand(t, repo, "user-1")
		other := seedBrand(t, repo, "user-2")

		_, err := repo.Embedding().Create(ctx, mine.ID, newChunk("catalog", "routers"))
		gt.NoError(t, err).Required()

		chunks, err := repo.Embedding().ListByBrand(ctx, other.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(0)

		count, err := repo.Embedding().CountByBrand(ctx, other.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)
	})

	t.Run("ExistsByHash is brand scoped", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mine := seedBrand(t, repo, "user-1")
		other := seedBrand(t, repo, "user-2")

		chunk := newChunk("catalog", "routers")
		_, err := repo.Embedding().Create(ctx, mine.ID, chunk)
		gt.NoError(t, err).Required()

		exists, err := repo.Embedding().ExistsByHash(ctx, mine.ID, chunk.ContentHash)
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).True()

		exists, err = repo.Embedding().ExistsByHash(ctx, other.ID, chunk.ContentHash)
		gt.NoError(t, err).Required()
		gt.Bool(t, exists).False()
	})

	t.Run("DeleteBySource removes only that source's chunks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		b := seedBrand(t, repo, "user-1")

		_, err := repo.Embedding().Create(ctx, b.ID, newChunk("catalog", "routers"))
		gt.NoError(t, err).Required()
		_, err = repo.Embedding().Create(ctx, b.ID, newChunk("catalog", "switches"))
		gt.NoError(t, err).Required()
		_, err = repo.Embedding().Create(ctx, b.ID, newChunk("faq", "return policy"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Embedding().DeleteBySource(ctx, b.ID, "catalog"))

		chunks, err := repo.Embedding().ListByBrand(ctx, b.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(1)
		gt.Value(t, chunks[0].SourceName).Equal("faq")
	})
}

func TestEmbeddingRepository_Memory(t *testing.T) {
	runEmbeddingRepositoryTest(t, newMemoryRepo)
}

func TestEmbeddingRepository_Firestore(t *testing.T) {
	runEmbeddingRepositoryTest(t, newFirestoreRepo)
}
