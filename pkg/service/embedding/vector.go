package embedding

import "github.com/atelier-lab/brandloom/pkg/domain/model"

// PadVector normalizes a vector to the given dimension. Vectors at or over
// the target are truncated, shorter ones are right-padded with zeros. The
// operation is idempotent.
func PadVector(vec []float32, dim int) []float32 {
	if dim <= 0 {
		dim = model.EmbeddingDimension
	}
	if len(vec) >= dim {
		return vec[:dim]
	}
	padded := make([]float32, dim)
	copy(padded, vec)
	return padded
}
