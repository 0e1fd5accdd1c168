package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/repository/firestore"
	"github.com/atelier-lab/brandloom/pkg/repository/memory"
)

// isNotFound matches the not-found sentinel of either backend
func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func isTerminalState(err error) bool {
	return errors.Is(err, memory.ErrTerminalState) || errors.Is(err, firestore.ErrTerminalState)
}

func isBadTransition(err error) bool {
	return errors.Is(err, memory.ErrBadTransition) || errors.Is(err, firestore.ErrBadTransition)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, memory.ErrDuplicateKey) || errors.Is(err, firestore.ErrDuplicateKey)
}

func isImmutableField(err error) bool {
	return errors.Is(err, memory.ErrImmutableField) || errors.Is(err, firestore.ErrImmutableField)
}

func newMemoryRepo(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, os.Getenv("FIRESTORE_DATABASE_ID"),
		firestore.WithCollectionPrefix("test-"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}
