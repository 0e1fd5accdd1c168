package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

const (
	// DefaultTopK is how many chunks a retrieval run returns
	DefaultTopK = 5

	// DefaultSimilarityThreshold is the minimum score for a retrieval
	// result to count as sufficient
	DefaultSimilarityThreshold = 0.6

	identitySourceName = "brand identity"

	warningInsufficient = "retrieved knowledge may not be relevant to the query"
	warningNoKnowledge  = "no knowledge found for this brand"
	refusalMessage      = "insufficient brand knowledge to answer this request"
)

// ErrInvalidInput marks requests with missing required arguments
var ErrInvalidInput = goerr.New("invalid input")

// Engine retrieves brand knowledge and builds safe context blocks for
// prompt injection. Every repository access is scoped by brand ID; cross
// brand retrieval is impossible at the query layer.
type Engine struct {
	repo      interfaces.Repository
	embedder  interfaces.Embedder
	topK      int
	threshold float64
	chunkSize int
	overlap   int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithTopK overrides the retrieval result count
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithSimilarityThreshold overrides the sufficiency threshold
func WithSimilarityThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// WithChunking overrides chunk size and overlap used during embedding
func WithChunking(size, overlap int) EngineOption {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
		if overlap >= 0 {
			e.overlap = overlap
		}
	}
}

// New creates a retrieval engine over the given repository and embedding
// backend
func New(repo interfaces.Repository, embedder interfaces.Embedder, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:      repo,
		embedder:  embedder,
		topK:      DefaultTopK,
		threshold: DefaultSimilarityThreshold,
		chunkSize: embedding.DefaultChunkSize,
		overlap:   embedding.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckHealth summarizes whether a brand has any retrievable knowledge.
// A missing brand is reported in the Error field, not as a returned error.
func (e *Engine) CheckHealth(ctx context.Context, brandID types.BrandID) (*model.KnowledgeHealth, error) {
	if brandID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "brand ID is required")
	}

	health := &model.KnowledgeHealth{BrandID: brandID}

	brand, err := e.repo.Brand().Get(ctx, brandID)
	if err != nil {
		health.Error = "brand not found"
		return health, nil
	}

	sources, err := e.repo.Source().ListByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge sources", goerr.V("brand_id", brandID))
	}
	health.TotalSources = len(sources)
	for _, s := range sources {
		if s.Active {
			health.ActiveSources++
		}
	}

	count, err := e.repo.Embedding().CountByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count embeddings", goerr.V("brand_id", brandID))
	}
	health.StoredEmbeddings = count
	health.VectorDimension = model.EmbeddingDimension

	for _, field := range []string{brand.Guidelines, brand.Audience, brand.Tone} {
		if field != "" {
			health.IdentityFields++
		}
	}

	retrievable := health.StoredEmbeddings + health.ActiveSources
	if health.IdentityFields > 0 {
		retrievable++
	}
	health.Healthy = retrievable > 0

	return health, nil
}

// TestRetrieval runs one retrieval for the query. The vector path is used
// when the brand has stored embeddings; otherwise, or when the vector path
// fails, text scoring over source summaries takes over.
func (e *Engine) TestRetrieval(ctx context.Context, brandID types.BrandID, query string) (*model.RetrievalResult, error) {
	if brandID == "" || query == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "brand ID and query are required")
	}

	result := &model.RetrievalResult{
		BrandID: brandID,
		Query:   query,
	}

	embeddings, err := e.repo.Embedding().ListByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list embeddings", goerr.V("brand_id", brandID))
	}

	var chunks []model.RetrievedChunk
	if len(embeddings) > 0 {
		chunks, err = e.retrieveVector(ctx, query, embeddings)
		if err != nil {
			logging.From(ctx).Warn("vector retrieval failed, falling back to text scoring",
				"brand_id", string(brandID),
				"error", err.Error(),
			)
			chunks = nil
		} else {
			result.Strategy = model.RetrievalVector
		}
	}

	if result.Strategy == "" {
		chunks, err = e.retrieveText(ctx, brandID, query, embeddings)
		if err != nil {
			return nil, err
		}
		result.Strategy = model.RetrievalText
	}

	result.Chunks = chunks
	for _, c := range chunks {
		if c.Similarity >= e.threshold {
			result.IsSufficient = true
			break
		}
	}

	if len(chunks) == 0 {
		result.Warning = warningNoKnowledge
	} else if !result.IsSufficient {
		result.Warning = warningInsufficient
	}

	return result, nil
}

func (e *Engine) retrieveVector(ctx context.Context, query string, embeddings []*model.DocumentEmbedding) ([]model.RetrievedChunk, error) {
	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(vecs) == 0 {
		return nil, goerr.New("embedder returned no vector for query")
	}
	queryVec := vecs[0]

	chunks := make([]model.RetrievedChunk, 0, len(embeddings))
	for _, emb := range embeddings {
		if len(emb.Vector) == 0 {
			continue
		}
		chunks = append(chunks, model.RetrievedChunk{
			Text:       emb.ChunkText,
			SourceName: emb.SourceName,
			SourceType: emb.SourceType,
			Similarity: cosineSimilarity(queryVec, emb.Vector),
		})
	}

	return e.rank(chunks), nil
}

func (e *Engine) retrieveText(ctx context.Context, brandID types.BrandID, query string, embeddings []*model.DocumentEmbedding) ([]model.RetrievedChunk, error) {
	queryTokens := tokenize(query)

	sources, err := e.repo.Source().ListByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge sources", goerr.V("brand_id", brandID))
	}

	var chunks []model.RetrievedChunk
	for _, s := range sources {
		if !s.Active || s.Summary == "" {
			continue
		}
		chunks = append(chunks, model.RetrievedChunk{
			Text:       s.Summary,
			SourceName: s.Name,
			SourceType: s.SourceType,
			Similarity: textScore(queryTokens, s.Summary),
		})
	}

	// Stored chunk texts stay searchable even when their vectors are
	// missing or unusable
	for _, emb := range embeddings {
		if emb.ChunkText == "" {
			continue
		}
		chunks = append(chunks, model.RetrievedChunk{
			Text:       emb.ChunkText,
			SourceName: emb.SourceName,
			SourceType: emb.SourceType,
			Similarity: textScore(queryTokens, emb.ChunkText),
		})
	}

	return e.rank(chunks), nil
}

func (e *Engine) rank(chunks []model.RetrievedChunk) []model.RetrievedChunk {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Similarity > chunks[j].Similarity
	})
	if len(chunks) > e.topK {
		chunks = chunks[:e.topK]
	}
	return chunks
}

// BuildContext runs retrieval and renders the chunks as labeled blocks for
// prompt injection. When forceRAG is set and retrieval is insufficient the
// context is cleared and the result marked refused, so callers in force
// mode never receive fabricated context.
func (e *Engine) BuildContext(ctx context.Context, brandID types.BrandID, query string, forceRAG bool) (*model.RAGContext, error) {
	retrieval, err := e.TestRetrieval(ctx, brandID, query)
	if err != nil {
		return nil, err
	}

	ragCtx := &model.RAGContext{
		Retrieval: *retrieval,
		Warning:   retrieval.Warning,
	}

	if forceRAG && !retrieval.IsSufficient {
		ragCtx.Refused = true
		ragCtx.Warning = refusalMessage
		return ragCtx, nil
	}

	blocks := make([]string, 0, len(retrieval.Chunks))
	for i, c := range retrieval.Chunks {
		blocks = append(blocks, fmt.Sprintf("[Source %d: %s (%s)] (relevance: %.2f)\n%s",
			i+1, c.SourceName, c.SourceType, c.Similarity, c.Text))
	}
	ragCtx.ContextBlock = strings.Join(blocks, "\n\n")

	return ragCtx, nil
}

// EmbedBrandKnowledge chunks and embeds all active source summaries plus
// the brand identity fields. Chunks whose content hash already exists for
// the brand are skipped, making repeated runs idempotent and cheap.
func (e *Engine) EmbedBrandKnowledge(ctx context.Context, brandID types.BrandID) (*model.EmbedReport, error) {
	if brandID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "brand ID is required")
	}

	brand, err := e.repo.Brand().Get(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get brand", goerr.V("brand_id", brandID))
	}

	sources, err := e.repo.Source().ListByBrand(ctx, brandID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge sources", goerr.V("brand_id", brandID))
	}

	type candidate struct {
		text       string
		sourceName string
		sourceType types.SourceType
		hash       string
	}

	var candidates []candidate
	for _, s := range sources {
		if !s.Active || s.Summary == "" {
			continue
		}
		for _, chunk := range embedding.ChunkText(s.Summary, e.chunkSize, e.overlap) {
			candidates = append(candidates, candidate{
				text:       chunk,
				sourceName: s.Name,
				sourceType: s.SourceType,
				hash:       model.HashContent(chunk),
			})
		}
	}

	// Identity fields are embedded whole, one chunk each
	for _, field := range []string{brand.Guidelines, brand.CoreValues, brand.Audience} {
		if field == "" {
			continue
		}
		candidates = append(candidates, candidate{
			text:       field,
			sourceName: identitySourceName,
			sourceType: types.SourceTypeManual,
			hash:       model.HashContent(field),
		})
	}

	report := &model.EmbedReport{}

	var pending []candidate
	for _, c := range candidates {
		exists, err := e.repo.Embedding().ExistsByHash(ctx, brandID, c.hash)
		if err != nil {
			report.Errors++
			continue
		}
		if exists {
			report.Skipped++
			continue
		}
		pending = append(pending, c)
	}

	if len(pending) == 0 {
		return report, nil
	}

	texts := make([]string, len(pending))
	for i, c := range pending {
		texts[i] = c.text
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed knowledge chunks",
			goerr.V("brand_id", brandID),
			goerr.V("count", len(texts)),
		)
	}
	if len(vectors) != len(pending) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(pending)),
			goerr.V("got", len(vectors)),
		)
	}

	for i, c := range pending {
		_, err := e.repo.Embedding().Create(ctx, brandID, &model.DocumentEmbedding{
			ChunkText:   c.text,
			Vector:      vectors[i],
			SourceName:  c.sourceName,
			SourceType:  c.sourceType,
			ContentHash: c.hash,
			Metadata: map[string]string{
				"embedder": e.embedder.ID(),
			},
		})
		if err != nil {
			logging.From(ctx).Warn("failed to persist embedding",
				"brand_id", string(brandID),
				"source", c.sourceName,
				"error", err.Error(),
			)
			report.Errors++
			continue
		}
		report.Embedded++
	}

	return report, nil
}
