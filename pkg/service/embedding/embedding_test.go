package embedding_test

import (
	"context"
	"strings"
	"testing"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/embedding"
	"github.com/m-mizutani/gt"
)

func TestPadVector(t *testing.T) {
	t.Run("short vector is zero padded", func(t *testing.T) {
		vec := embedding.PadVector([]float32{1, 2, 3}, 8)
		gt.Value(t, len(vec)).Equal(8)
		gt.Value(t, vec[0]).Equal(float32(1))
		gt.Value(t, vec[2]).Equal(float32(3))
		gt.Value(t, vec[7]).Equal(float32(0))
	})

	t.Run("long vector is truncated", func(t *testing.T) {
		vec := embedding.PadVector([]float32{1, 2, 3, 4, 5}, 3)
		gt.Value(t, len(vec)).Equal(3)
		gt.Value(t, vec[2]).Equal(float32(3))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := embedding.PadVector([]float32{1, 2}, 6)
		twice := embedding.PadVector(once, 6)
		gt.Value(t, once).Equal(twice)
	})
}

func TestChunkText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := embedding.ChunkText("hello world", 100, 10)
		gt.Value(t, len(chunks)).Equal(1)
		gt.Value(t, chunks[0]).Equal("hello world")
	})

	t.Run("empty text produces nothing", func(t *testing.T) {
		gt.Value(t, len(embedding.ChunkText("   ", 100, 10))).Equal(0)
	})

	t.Run("splits at sentence boundaries", func(t *testing.T) {
		text := "First sentence here. Second sentence follows. Third one closes it out."
		chunks := embedding.ChunkText(text, 45, 0)
		gt.Bool(t, len(chunks) > 1).True()
		gt.Bool(t, strings.HasSuffix(chunks[0], ".")).True()
	})

	t.Run("never splits mid word when avoidable", func(t *testing.T) {
		text := strings.Repeat("alpha beta gamma delta ", 20)
		chunks := embedding.ChunkText(text, 50, 5)
		for _, chunk := range chunks {
			for _, word := range strings.Fields(chunk) {
				switch word {
				case "alpha", "beta", "gamma", "delta":
				default:
					t.Errorf("chunk contains split word: %q", word)
				}
			}
		}
	})

	t.Run("chunks respect max size", func(t *testing.T) {
		text := strings.Repeat("some reasonably sized sentence goes right here. ", 30)
		for _, chunk := range embedding.ChunkText(text, 100, 20) {
			gt.Bool(t, len(chunk) <= 100).True()
		}
	})
}

func TestFindBoundary(t *testing.T) {
	t.Run("latest sentence end wins across separator kinds", func(t *testing.T) {
		// ". " ends at 8 while ".\n" ends at 10; the later one is the cut
		text := "Wait. . .\nNext part"
		gt.Value(t, embedding.FindBoundary(text, 0, 10)).Equal(10)
	})

	t.Run("paragraph break beats sentence ends", func(t *testing.T) {
		text := "One done. Two done.\n\nThree starts"
		gt.Value(t, embedding.FindBoundary(text, 0, 25)).Equal(21)
	})

	t.Run("whitespace fallback when no sentence ends", func(t *testing.T) {
		text := "just some words without punctuation"
		gt.Value(t, embedding.FindBoundary(text, 0, 14)).Equal(10)
	})

	t.Run("unbroken word cuts hard at the window end", func(t *testing.T) {
		text := strings.Repeat("x", 40)
		gt.Value(t, embedding.FindBoundary(text, 0, 20)).Equal(20)
	})
}

func TestLocalEmbedder(t *testing.T) {
	ctx := context.Background()
	e := embedding.NewLocalEmbedder()

	t.Run("output matches storage dimension", func(t *testing.T) {
		vecs, err := e.Embed(ctx, []string{"brand voice guidelines"})
		gt.NoError(t, err)
		gt.Value(t, len(vecs)).Equal(1)
		gt.Value(t, len(vecs[0])).Equal(model.EmbeddingDimension)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.Embed(ctx, []string{"the same input text"})
		gt.NoError(t, err)
		b, err := e.Embed(ctx, []string{"the same input text"})
		gt.NoError(t, err)
		gt.Value(t, a).Equal(b)
	})

	t.Run("different texts differ", func(t *testing.T) {
		vecs, err := e.Embed(ctx, []string{"coffee roasting notes", "running shoe materials"})
		gt.NoError(t, err)
		gt.Value(t, vecs[0]).NotEqual(vecs[1])
	})
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	pro := embedding.NewGeminiEmbedder(nil)
	override := embedding.NewLocalEmbedder()

	t.Run("override wins", func(t *testing.T) {
		got := embedding.Select(ctx, override, types.PlanTierPro, pro)
		gt.Value(t, got.ID()).Equal(override.ID())
	})

	t.Run("pro tier picks the model backend", func(t *testing.T) {
		got := embedding.Select(ctx, nil, types.PlanTierPro, pro)
		gt.Value(t, got.ID()).Equal(pro.ID())
	})

	t.Run("pro tier without backend falls back to local", func(t *testing.T) {
		got := embedding.Select(ctx, nil, types.PlanTierPro, nil)
		gt.Value(t, got.ID()).Equal(embedding.NewLocalEmbedder().ID())
	})

	t.Run("free tier defaults to local", func(t *testing.T) {
		got := embedding.Select(ctx, nil, types.PlanTierFree, pro)
		gt.Value(t, got.ID()).Equal(embedding.NewLocalEmbedder().ID())
	})

	t.Run("empty tier treated as free", func(t *testing.T) {
		got := embedding.Select(ctx, nil, types.PlanTier(""), pro)
		gt.Value(t, got.ID()).Equal(embedding.NewLocalEmbedder().ID())
	})
}
