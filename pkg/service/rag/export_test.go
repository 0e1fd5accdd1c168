package rag

// Exposed for tests
var (
	TextScore = textScore
	Tokenize  = tokenize
)
