package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
)

// localNativeDimension is the feature-hash bucket count. Smaller than the
// storage dimension on purpose; PadVector zero-fills the rest.
const localNativeDimension = 512

// LocalEmbedder is the free-tier fallback backend. It hashes tokens into a
// fixed number of buckets and L2-normalizes the result. The vectors are
// far weaker than model embeddings but deterministic, offline, and good
// enough for coarse similarity over a single brand's knowledge.
type LocalEmbedder struct{}

var _ interfaces.Embedder = &LocalEmbedder{}

func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (e *LocalEmbedder) ID() string {
	return "local-feature-hash"
}

func (e *LocalEmbedder) Dimension() int {
	return model.EmbeddingDimension
}

func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = PadVector(featureHash(text), model.EmbeddingDimension)
	}
	return vectors, nil
}

func featureHash(text string) []float32 {
	vec := make([]float32, localNativeDimension)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, token := range tokens {
		if len(token) < 2 {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%localNativeDimension]++
	}

	// L2 normalize so cosine similarity behaves across document lengths
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec
}
