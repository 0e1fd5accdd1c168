package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// EmbeddingDimension is the locked storage dimension of all stored vectors.
// Backends producing shorter vectors are zero-padded up to this size so every
// backend writes to the same column shape.
const EmbeddingDimension = 1536

// DocumentEmbedding is one embedded knowledge chunk, scoped to a single
// brand. ContentHash deduplicates chunks across embed runs.
type DocumentEmbedding struct {
	ID          types.EmbeddingID
	BrandID     types.BrandID
	ChunkText   string
	Vector      []float32
	SourceName  string
	SourceType  types.SourceType
	ContentHash string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// HashContent computes the content hash used for chunk deduplication
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
