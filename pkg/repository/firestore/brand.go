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

type brandDoc struct {
	ID         types.BrandID `firestore:"ID"`
	UserID     types.UserID  `firestore:"UserID"`
	Name       string        `firestore:"Name"`
	Tone       string        `firestore:"Tone"`
	Guidelines string        `firestore:"Guidelines"`
	Audience   string        `firestore:"Audience"`
	CoreValues string        `firestore:"CoreValues"`
	CreatedAt  time.Time     `firestore:"CreatedAt"`
	UpdatedAt  time.Time     `firestore:"UpdatedAt"`
}

func toBrandDoc(b *model.Brand) *brandDoc {
	return &brandDoc{
		ID:         b.ID,
		UserID:     b.UserID,
		Name:       b.Name,
		Tone:       b.Tone,
		Guidelines: b.Guidelines,
		Audience:   b.Audience,
		CoreValues: b.CoreValues,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func fromBrandDoc(d *brandDoc) *model.Brand {
	return &model.Brand{
		ID:         d.ID,
		UserID:     d.UserID,
		Name:       d.Name,
		Tone:       d.Tone,
		Guidelines: d.Guidelines,
		Audience:   d.Audience,
		CoreValues: d.CoreValues,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func docToBrand(doc *firestore.DocumentSnapshot) (*model.Brand, error) {
	var d brandDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromBrandDoc(&d), nil
}

type brandRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newBrandRepository(client *firestore.Client) *brandRepository {
	return &brandRepository{
		client: client,
	}
}

func (r *brandRepository) brandsCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "brands")
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) (*model.Brand, error) {
	now := time.Now().UTC()
	if brand.ID == "" {
		brand.ID = types.NewBrandID()
	}
	brand.CreatedAt = now
	brand.UpdatedAt = now

	if err := brand.Validate(); err != nil {
		return nil, err
	}

	docRef := r.brandsCollection().Doc(string(brand.ID))
	if _, err := docRef.Set(ctx, toBrandDoc(brand)); err != nil {
		return nil, goerr.Wrap(err, "failed to create brand")
	}

	return brand, nil
}

func (r *brandRepository) Get(ctx context.Context, id types.BrandID) (*model.Brand, error) {
	doc, err := r.brandsCollection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "brand not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get brand", goerr.V("id", id))
	}

	b, err := docToBrand(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal brand", goerr.V("id", id))
	}

	return b, nil
}

func (r *brandRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Brand, error) {
	iter := r.brandsCollection().
		Where("UserID", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	brands := make([]*model.Brand, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate brands", goerr.V("user_id", userID))
		}

		b, err := docToBrand(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal brand")
		}
		brands = append(brands, b)
	}

	// Ordered client-side to avoid a composite index requirement
	sort.Slice(brands, func(i, j int) bool {
		return brands[i].CreatedAt.Before(brands[j].CreatedAt)
	})

	return brands, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) (*model.Brand, error) {
	docRef := r.brandsCollection().Doc(string(brand.ID))

	var updated *model.Brand
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "brand not found", goerr.V("id", brand.ID))
			}
			return goerr.Wrap(err, "failed to get brand")
		}

		existing, err := docToBrand(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal brand")
		}

		if brand.UserID != "" && brand.UserID != existing.UserID {
			return goerr.Wrap(ErrImmutableField, "brand owner cannot change", goerr.V("id", brand.ID))
		}

		next := *existing
		if brand.Name != "" {
			next.Name = brand.Name
		}
		next.Tone = brand.Tone
		next.Guidelines = brand.Guidelines
		next.Audience = brand.Audience
		next.CoreValues = brand.CoreValues
		next.UpdatedAt = time.Now().UTC()

		updated = &next
		return tx.Set(docRef, toBrandDoc(&next))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
