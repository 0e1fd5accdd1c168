package model

import "github.com/atelier-lab/brandloom/pkg/domain/types"

// RetrievalStrategy names how chunks were retrieved
type RetrievalStrategy string

const (
	// RetrievalVector is cosine similarity over stored embeddings
	RetrievalVector RetrievalStrategy = "vector"
	// RetrievalText is token-overlap scoring over raw summaries, used when
	// no embeddings exist or the vector path fails
	RetrievalText RetrievalStrategy = "text"
)

// RetrievedChunk is one knowledge chunk with its relevance score
type RetrievedChunk struct {
	Text       string
	SourceName string
	SourceType types.SourceType
	Similarity float64
}

// RetrievalResult is the outcome of one retrieval run for a brand
type RetrievalResult struct {
	BrandID      types.BrandID
	Query        string
	Strategy     RetrievalStrategy
	Chunks       []RetrievedChunk
	IsSufficient bool
	Warning      string
}

// RAGContext is an LLM-ready context block built from retrieval
type RAGContext struct {
	ContextBlock string
	Retrieval    RetrievalResult
	Refused      bool
	Warning      string
}

// KnowledgeHealth summarizes the retrievable knowledge of a brand
type KnowledgeHealth struct {
	BrandID          types.BrandID
	TotalSources     int
	ActiveSources    int
	StoredEmbeddings int
	VectorDimension  int
	IdentityFields   int
	Healthy          bool
	Error            string
}

// EmbedReport counts the outcome of one embed run
type EmbedReport struct {
	Embedded int
	Skipped  int
	Errors   int
}
