package interfaces

import "context"

// Embedder produces fixed-dimension vectors from text. All implementations
// normalize their output to model.EmbeddingDimension so vectors from
// different backends are storage compatible.
type Embedder interface {
	// ID returns a stable backend identity for provenance metadata
	ID() string

	// Embed converts a batch of texts into vectors, one per input text,
	// each exactly Dimension() long
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the output vector dimension
	Dimension() int
}
