package model

import (
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Brand is the tenant namespace. All retrieval and quota tracking is scoped
// by Brand.ID; no query may cross brand boundaries.
type Brand struct {
	ID         types.BrandID
	UserID     types.UserID
	Name       string
	Tone       string
	Guidelines string
	Audience   string
	CoreValues string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks invariants of a brand record
func (b *Brand) Validate() error {
	if err := b.ID.Validate(); err != nil {
		return err
	}
	if b.UserID == "" {
		return goerr.New("brand owner is required", goerr.V("brand_id", b.ID))
	}
	if b.Name == "" {
		return goerr.New("brand name is required", goerr.V("brand_id", b.ID))
	}
	return nil
}

// IdentitySummary renders the brand identity fields as a short context block
// for prompt injection. Empty fields are omitted.
func (b *Brand) IdentitySummary() string {
	summary := "Brand: " + b.Name
	if b.Tone != "" {
		summary += "\nTone: " + b.Tone
	}
	if b.Audience != "" {
		summary += "\nAudience: " + b.Audience
	}
	if b.Guidelines != "" {
		summary += "\nGuidelines: " + b.Guidelines
	}
	if b.CoreValues != "" {
		summary += "\nCore values: " + b.CoreValues
	}
	return summary
}
