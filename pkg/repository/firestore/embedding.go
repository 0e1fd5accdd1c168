package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// embeddingDoc is the Firestore document representation of
// model.DocumentEmbedding. Vector is stored as firestore.Vector32 so that
// native vector search stays available.
type embeddingDoc struct {
	ID          types.EmbeddingID  `firestore:"ID"`
	BrandID     types.BrandID      `firestore:"BrandID"`
	ChunkText   string             `firestore:"ChunkText"`
	Vector      firestore.Vector32 `firestore:"Vector,omitempty"`
	SourceName  string             `firestore:"SourceName"`
	SourceType  types.SourceType   `firestore:"SourceType"`
	ContentHash string             `firestore:"ContentHash"`
	Metadata    map[string]string  `firestore:"Metadata,omitempty"`
	CreatedAt   time.Time          `firestore:"CreatedAt"`
}

func toEmbeddingDoc(e *model.DocumentEmbedding) *embeddingDoc {
	doc := &embeddingDoc{
		ID:          e.ID,
		BrandID:     e.BrandID,
		ChunkText:   e.ChunkText,
		SourceName:  e.SourceName,
		SourceType:  e.SourceType,
		ContentHash: e.ContentHash,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
	if len(e.Vector) > 0 {
		doc.Vector = firestore.Vector32(e.Vector)
	}
	return doc
}

func fromEmbeddingDoc(d *embeddingDoc) *model.DocumentEmbedding {
	e := &model.DocumentEmbedding{
		ID:          d.ID,
		BrandID:     d.BrandID,
		ChunkText:   d.ChunkText,
		SourceName:  d.SourceName,
		SourceType:  d.SourceType,
		ContentHash: d.ContentHash,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
	}
	if len(d.Vector) > 0 {
		e.Vector = []float32(d.Vector)
	}
	return e
}

func docToEmbedding(doc *firestore.DocumentSnapshot) (*model.DocumentEmbedding, error) {
	var d embeddingDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromEmbeddingDoc(&d), nil
}

type embeddingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEmbeddingRepository(client *firestore.Client) *embeddingRepository {
	return &embeddingRepository{
		client: client,
	}
}

func (r *embeddingRepository) embeddingsCollection(brandID types.BrandID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "brands").Doc(string(brandID)).Collection("embeddings")
}

func (r *embeddingRepository) Create(ctx context.Context, brandID types.BrandID, embedding *model.DocumentEmbedding) (*model.DocumentEmbedding, error) {
	if embedding.ID == "" {
		embedding.ID = types.NewEmbeddingID()
	}
	embedding.BrandID = brandID
	embedding.CreatedAt = time.Now().UTC()

	docRef := r.embeddingsCollection(brandID).Doc(string(embedding.ID))
	if _, err := docRef.Set(ctx, toEmbeddingDoc(embedding)); err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding",
			goerr.V("brand_id", brandID),
			goerr.V("source", embedding.SourceName),
		)
	}

	return embedding, nil
}

func (r *embeddingRepository) ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.DocumentEmbedding, error) {
	iter := r.embeddingsCollection(brandID).Documents(ctx)
	defer iter.Stop()

	embeddings := make([]*model.DocumentEmbedding, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate embeddings", goerr.V("brand_id", brandID))
		}

		e, err := docToEmbedding(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal embedding")
		}
		embeddings = append(embeddings, e)
	}

	sort.Slice(embeddings, func(i, j int) bool {
		return embeddings[i].CreatedAt.Before(embeddings[j].CreatedAt)
	})

	return embeddings, nil
}

func (r *embeddingRepository) CountByBrand(ctx context.Context, brandID types.BrandID) (int, error) {
	iter := r.embeddingsCollection(brandID).Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count embeddings", goerr.V("brand_id", brandID))
		}
		count++
	}

	return count, nil
}

func (r *embeddingRepository) ExistsByHash(ctx context.Context, brandID types.BrandID, contentHash string) (bool, error) {
	iter := r.embeddingsCollection(brandID).
		Where("ContentHash", "==", contentHash).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to query embedding by hash",
			goerr.V("brand_id", brandID),
			goerr.V("content_hash", contentHash),
		)
	}

	return true, nil
}

func (r *embeddingRepository) DeleteBySource(ctx context.Context, brandID types.BrandID, sourceName string) error {
	iter := r.embeddingsCollection(brandID).
		Where("SourceName", "==", sourceName).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate embeddings for delete",
				goerr.V("brand_id", brandID),
				goerr.V("source", sourceName),
			)
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to schedule embedding delete")
		}
	}
	bw.End()

	return nil
}
