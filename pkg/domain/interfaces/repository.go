package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Brand() BrandRepository
	Source() SourceRepository
	Embedding() EmbeddingRepository
	Task() TaskRepository
	History() HistoryRepository

	Close() error
}
