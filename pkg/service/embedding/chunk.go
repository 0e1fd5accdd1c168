package embedding

import "strings"

const (
	// DefaultChunkSize is the maximum chunk length in characters
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap carried between adjacent chunks
	DefaultChunkOverlap = 100
)

// ChunkText splits text into overlapping windows of at most maxSize
// characters. Splits prefer paragraph, then sentence, then word
// boundaries; a chunk is only cut mid-word when a single word exceeds
// maxSize on its own.
func ChunkText(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = DefaultChunkOverlap
		if overlap >= maxSize {
			overlap = maxSize / 10
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBoundary(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// findBoundary picks the best split point at or before end, preferring
// paragraph breaks, then sentence ends, then whitespace
func findBoundary(text string, start, end int) int {
	window := text[start:end]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return start + idx + 2
	}

	// Compare candidate end positions, not raw indexes, so the latest
	// sentence end wins regardless of separator kind
	best := -1
	for _, sep := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if idx := strings.LastIndex(window, sep); idx >= 0 && idx+len(sep) > best {
			best = idx + len(sep)
		}
	}
	if best > 0 {
		return start + best
	}

	if idx := strings.LastIndexAny(window, " \t\n"); idx > 0 {
		return start + idx + 1
	}

	// Single word longer than the window, cut hard
	return end
}
