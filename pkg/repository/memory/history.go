package memory

import (
	"context"
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

type historyRepository struct {
	mu       sync.RWMutex
	messages map[types.UserID][]*model.ChatMessage
}

func newHistoryRepository() *historyRepository {
	return &historyRepository{
		messages: make(map[types.UserID][]*model.ChatMessage),
	}
}

func copyMessage(m *model.ChatMessage) *model.ChatMessage {
	copied := *m
	return &copied
}

func (r *historyRepository) Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyMessage(msg)
	if created.ID == "" {
		created.ID = types.NewMessageID()
	}
	created.CreatedAt = time.Now().UTC()

	r.messages[created.UserID] = append(r.messages[created.UserID], created)
	return copyMessage(created), nil
}

func (r *historyRepository) ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Insertion order is chronological, so newest-first is the reverse walk.
	// Sorting on CreatedAt alone would shuffle messages created within the
	// same clock tick.
	stored := r.messages[userID]
	result := make([]*model.ChatMessage, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		result = append(result, copyMessage(stored[i]))
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
