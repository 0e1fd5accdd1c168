package model

import (
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// KnowledgeSource is one ingested source of brand knowledge (a crawled
// website, an uploaded document, or manually entered notes). It belongs to
// exactly one brand and is never shared.
type KnowledgeSource struct {
	ID          types.SourceID
	BrandID     types.BrandID
	Name        string
	SourceType  types.SourceType
	Summary     string
	ContentHash string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks invariants of a knowledge source record
func (s *KnowledgeSource) Validate() error {
	if s.BrandID == "" {
		return goerr.New("knowledge source requires a brand", goerr.V("source_id", s.ID))
	}
	if s.Name == "" {
		return goerr.New("knowledge source name is required", goerr.V("source_id", s.ID))
	}
	if !s.SourceType.IsValid() {
		return goerr.New("invalid source type",
			goerr.V("source_id", s.ID),
			goerr.V("source_type", s.SourceType),
		)
	}
	return nil
}
