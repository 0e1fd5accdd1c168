package model

import (
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// Chat roles for history records
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one durable chat-log record. The durable log is the
// fallback source of truth for user context across process restarts.
type ChatMessage struct {
	ID        types.MessageID
	UserID    types.UserID
	Role      string
	Content   string
	Intent    types.Intent
	CreatedAt time.Time
}

// ChatTurn is one prior exchange passed to the classifier
type ChatTurn struct {
	Role    string
	Content string
}
