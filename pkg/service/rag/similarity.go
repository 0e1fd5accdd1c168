package rag

import (
	"math"
	"strings"
	"unicode"
)

// stopwords excluded from text-path scoring. Tokens this common carry no
// retrieval signal.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "she": {}, "that": {},
	"the": {}, "their": {}, "they": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "which": {}, "will": {}, "with": {},
	"you": {}, "your": {},
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix; a zero vector scores
// zero.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenize lowercases text and splits on non-alphanumeric runes, dropping
// stopwords and single-character tokens
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// textScore ranks a document against query tokens. The first term rewards
// repeated query-term occurrences, the second rewards breadth of distinct
// term coverage.
func textScore(queryTokens []string, docText string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	queryCounts := termCounts(queryTokens)
	docCounts := termCounts(tokenize(docText))

	var overlap, distinctCommon int
	for term, qc := range queryCounts {
		dc := docCounts[term]
		if dc == 0 {
			continue
		}
		distinctCommon++
		if qc < dc {
			overlap += qc
		} else {
			overlap += dc
		}
	}

	totalQueryTerms := len(queryTokens)
	distinctQueryTerms := len(queryCounts)

	return 0.6*(float64(overlap)/float64(totalQueryTerms)) +
		0.4*(float64(distinctCommon)/float64(distinctQueryTerms))
}
