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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sourceDoc struct {
	ID          types.SourceID   `firestore:"ID"`
	BrandID     types.BrandID    `firestore:"BrandID"`
	Name        string           `firestore:"Name"`
	SourceType  types.SourceType `firestore:"SourceType"`
	Summary     string           `firestore:"Summary"`
	ContentHash string           `firestore:"ContentHash"`
	Active      bool             `firestore:"Active"`
	CreatedAt   time.Time        `firestore:"CreatedAt"`
	UpdatedAt   time.Time        `firestore:"UpdatedAt"`
}

func toSourceDoc(s *model.KnowledgeSource) *sourceDoc {
	return &sourceDoc{
		ID:          s.ID,
		BrandID:     s.BrandID,
		Name:        s.Name,
		SourceType:  s.SourceType,
		Summary:     s.Summary,
		ContentHash: s.ContentHash,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromSourceDoc(d *sourceDoc) *model.KnowledgeSource {
	return &model.KnowledgeSource{
		ID:          d.ID,
		BrandID:     d.BrandID,
		Name:        d.Name,
		SourceType:  d.SourceType,
		Summary:     d.Summary,
		ContentHash: d.ContentHash,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func docToSource(doc *firestore.DocumentSnapshot) (*model.KnowledgeSource, error) {
	var d sourceDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromSourceDoc(&d), nil
}

type sourceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSourceRepository(client *firestore.Client) *sourceRepository {
	return &sourceRepository{
		client: client,
	}
}

func (r *sourceRepository) sourcesCollection(brandID types.BrandID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "brands").Doc(string(brandID)).Collection("sources")
}

func (r *sourceRepository) Create(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error) {
	now := time.Now().UTC()
	if source.ID == "" {
		source.ID = types.NewSourceID()
	}
	source.BrandID = brandID
	source.CreatedAt = now
	source.UpdatedAt = now

	if err := source.Validate(); err != nil {
		return nil, err
	}

	docRef := r.sourcesCollection(brandID).Doc(string(source.ID))
	if _, err := docRef.Set(ctx, toSourceDoc(source)); err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge source")
	}

	return source, nil
}

func (r *sourceRepository) Get(ctx context.Context, brandID types.BrandID, id types.SourceID) (*model.KnowledgeSource, error) {
	doc, err := r.sourcesCollection(brandID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "knowledge source not found",
				goerr.V("brand_id", brandID),
				goerr.V("id", id),
			)
		}
		return nil, goerr.Wrap(err, "failed to get knowledge source", goerr.V("id", id))
	}

	s, err := docToSource(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal knowledge source", goerr.V("id", id))
	}

	return s, nil
}

func (r *sourceRepository) ListByBrand(ctx context.Context, brandID types.BrandID) ([]*model.KnowledgeSource, error) {
	iter := r.sourcesCollection(brandID).Documents(ctx)
	defer iter.Stop()

	sources := make([]*model.KnowledgeSource, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate knowledge sources", goerr.V("brand_id", brandID))
		}

		s, err := docToSource(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal knowledge source")
		}
		sources = append(sources, s)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.Before(sources[j].CreatedAt)
	})

	return sources, nil
}

func (r *sourceRepository) Update(ctx context.Context, brandID types.BrandID, source *model.KnowledgeSource) (*model.KnowledgeSource, error) {
	docRef := r.sourcesCollection(brandID).Doc(string(source.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "knowledge source not found",
				goerr.V("brand_id", brandID),
				goerr.V("id", source.ID),
			)
		}
		return nil, goerr.Wrap(err, "failed to get knowledge source", goerr.V("id", source.ID))
	}

	existing, err := docToSource(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal knowledge source")
	}

	source.BrandID = existing.BrandID
	source.CreatedAt = existing.CreatedAt
	source.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toSourceDoc(source)); err != nil {
		return nil, goerr.Wrap(err, "failed to update knowledge source", goerr.V("id", source.ID))
	}

	return source, nil
}

func (r *sourceRepository) Delete(ctx context.Context, brandID types.BrandID, id types.SourceID) error {
	docRef := r.sourcesCollection(brandID).Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "knowledge source not found",
				goerr.V("brand_id", brandID),
				goerr.V("id", id),
			)
		}
		return goerr.Wrap(err, "failed to get knowledge source", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete knowledge source", goerr.V("id", id))
	}

	return nil
}
