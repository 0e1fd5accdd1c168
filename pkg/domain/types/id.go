package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// BrandID identifies a brand, the tenant namespace for knowledge and quota
type BrandID string

// NewBrandID generates a new UUID v4 BrandID
func NewBrandID() BrandID {
	return BrandID(uuid.New().String())
}

// Validate checks if the brand ID is non-empty
func (id BrandID) Validate() error {
	if id == "" {
		return goerr.New("brand ID must not be empty")
	}
	return nil
}

func (id BrandID) String() string {
	return string(id)
}

// SourceID identifies a knowledge source within a brand
type SourceID string

// NewSourceID generates a new UUID v4 SourceID
func NewSourceID() SourceID {
	return SourceID(uuid.New().String())
}

func (id SourceID) String() string {
	return string(id)
}

// EmbeddingID identifies a stored document embedding chunk
type EmbeddingID string

// NewEmbeddingID generates a new UUID v4 EmbeddingID
func NewEmbeddingID() EmbeddingID {
	return EmbeddingID(uuid.New().String())
}

func (id EmbeddingID) String() string {
	return string(id)
}

// TaskID identifies a task execution record
type TaskID string

// NewTaskID generates a new UUID v4 TaskID
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func (id TaskID) String() string {
	return string(id)
}

// MessageID identifies a durable chat history record
type MessageID string

// NewMessageID generates a new UUID v4 MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func (id MessageID) String() string {
	return string(id)
}

// UserID identifies an end user. It is issued by the surrounding
// application; this core treats it as an opaque string.
type UserID string

func (id UserID) String() string {
	return string(id)
}
