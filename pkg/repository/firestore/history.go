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

type chatMessageDoc struct {
	ID        types.MessageID `firestore:"ID"`
	UserID    types.UserID    `firestore:"UserID"`
	Role      string          `firestore:"Role"`
	Content   string          `firestore:"Content"`
	Intent    types.Intent    `firestore:"Intent,omitempty"`
	CreatedAt time.Time       `firestore:"CreatedAt"`
}

func toChatMessageDoc(m *model.ChatMessage) *chatMessageDoc {
	return &chatMessageDoc{
		ID:        m.ID,
		UserID:    m.UserID,
		Role:      m.Role,
		Content:   m.Content,
		Intent:    m.Intent,
		CreatedAt: m.CreatedAt,
	}
}

func fromChatMessageDoc(d *chatMessageDoc) *model.ChatMessage {
	return &model.ChatMessage{
		ID:        d.ID,
		UserID:    d.UserID,
		Role:      d.Role,
		Content:   d.Content,
		Intent:    d.Intent,
		CreatedAt: d.CreatedAt,
	}
}

type historyRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHistoryRepository(client *firestore.Client) *historyRepository {
	return &historyRepository{
		client: client,
	}
}

func (r *historyRepository) messagesCollection(userID types.UserID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "chat_logs").Doc(string(userID)).Collection("messages")
}

func (r *historyRepository) Create(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = types.NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	docRef := r.messagesCollection(msg.UserID).Doc(string(msg.ID))
	if _, err := docRef.Set(ctx, toChatMessageDoc(msg)); err != nil {
		return nil, goerr.Wrap(err, "failed to create chat message", goerr.V("user_id", msg.UserID))
	}

	return msg, nil
}

func (r *historyRepository) ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.ChatMessage, error) {
	query := r.messagesCollection(userID).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.ChatMessage, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chat messages", goerr.V("user_id", userID))
		}

		var d chatMessageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chat message")
		}
		messages = append(messages, fromChatMessageDoc(&d))
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})

	return messages, nil
}
