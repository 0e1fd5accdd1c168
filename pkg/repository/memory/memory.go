package memory

import (
	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository for development and tests
type Memory struct {
	brand     *brandRepository
	source    *sourceRepository
	embedding *embeddingRepository
	task      *taskRepository
	history   *historyRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		brand:     newBrandRepository(),
		source:    newSourceRepository(),
		embedding: newEmbeddingRepository(),
		task:      newTaskRepository(),
		history:   newHistoryRepository(),
	}
}

func (m *Memory) Brand() interfaces.BrandRepository {
	return m.brand
}

func (m *Memory) Source() interfaces.SourceRepository {
	return m.source
}

func (m *Memory) Embedding() interfaces.EmbeddingRepository {
	return m.embedding
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) History() interfaces.HistoryRepository {
	return m.history
}

func (m *Memory) Close() error {
	return nil
}
