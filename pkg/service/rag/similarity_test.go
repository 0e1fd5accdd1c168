package rag_test

import (
	"testing"

	"github.com/atelier-lab/brandloom/pkg/service/rag"
	"github.com/m-mizutani/gt"
)

func TestTextScore(t *testing.T) {
	t.Run("text scored against itself is exactly 1", func(t *testing.T) {
		text := "enterprise routers ship alongside managed switches for data centers"
		score := rag.TextScore(rag.Tokenize(text), text)
		gt.Value(t, score).Equal(1.0)
	})

	t.Run("repeated terms still score 1 against the same text", func(t *testing.T) {
		text := "routers routers routers and one managed switch"
		score := rag.TextScore(rag.Tokenize(text), text)
		gt.Value(t, score).Equal(1.0)
	})

	t.Run("token-disjoint texts score exactly 0", func(t *testing.T) {
		query := rag.Tokenize("espresso beans and pour-over brewing")
		score := rag.TextScore(query, "enterprise routers ship with managed switches")
		gt.Value(t, score).Equal(0.0)
	})

	t.Run("stopword-only overlap scores 0", func(t *testing.T) {
		query := rag.Tokenize("what are the options")
		score := rag.TextScore(query, "the switches are what we sell")
		gt.Value(t, score).Equal(0.0)
	})

	t.Run("empty query scores 0", func(t *testing.T) {
		gt.Value(t, rag.TextScore(nil, "anything at all")).Equal(0.0)
	})
}
