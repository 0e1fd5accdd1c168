package interfaces

import (
	"context"

	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// HistoryRepository defines the interface for durable chat-log persistence
type HistoryRepository interface {
	// Create appends one chat message to the durable log
	Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error)

	// ListRecent retrieves the latest messages of a user, newest first,
	// up to limit
	ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.ChatMessage, error)
}
