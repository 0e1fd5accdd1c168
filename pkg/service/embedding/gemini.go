package embedding

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// GeminiEmbedder produces vectors through a gollem LLM client. This is the
// pro-tier backend; vectors come back at the target dimension already but
// still pass through PadVector so storage compatibility never depends on
// the upstream honoring the requested dimension.
type GeminiEmbedder struct {
	client gollem.LLMClient
}

var _ interfaces.Embedder = &GeminiEmbedder{}

func NewGeminiEmbedder(client gollem.LLMClient) *GeminiEmbedder {
	return &GeminiEmbedder{client: client}
}

func (e *GeminiEmbedder) ID() string {
	return "gemini-embedding"
}

func (e *GeminiEmbedder) Dimension() int {
	return model.EmbeddingDimension
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := e.client.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("count", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)),
			goerr.V("got", len(embeddings)),
		)
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		vectors[i] = PadVector(vec, model.EmbeddingDimension)
	}

	return vectors, nil
}
