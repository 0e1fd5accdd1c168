package types

// PlanTier is the subscription tier of a user, used to select the
// embedding backend.
type PlanTier string

const (
	PlanTierFree PlanTier = "free"
	PlanTierPro  PlanTier = "pro"
)

// Normalize returns the tier, treating empty as free
func (t PlanTier) Normalize() PlanTier {
	if t == "" {
		return PlanTierFree
	}
	return t
}

func (t PlanTier) String() string {
	return string(t)
}
