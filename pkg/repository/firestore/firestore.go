package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type Firestore struct {
	client    *firestore.Client
	brand     *brandRepository
	source    *sourceRepository
	embedding *embeddingRepository
	task      *taskRepository
	history   *historyRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used by tests to avoid
// clobbering each other on a shared project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.brand.collectionPrefix = prefix
		f.source.collectionPrefix = prefix
		f.embedding.collectionPrefix = prefix
		f.task.collectionPrefix = prefix
		f.history.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:    client,
		brand:     newBrandRepository(client),
		source:    newSourceRepository(client),
		embedding: newEmbeddingRepository(client),
		task:      newTaskRepository(client),
		history:   newHistoryRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Brand() interfaces.BrandRepository {
	return f.brand
}

func (f *Firestore) Source() interfaces.SourceRepository {
	return f.source
}

func (f *Firestore) Embedding() interfaces.EmbeddingRepository {
	return f.embedding
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) History() interfaces.HistoryRepository {
	return f.history
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
