package types

// BreakerState represents the state of a provider circuit breaker
type BreakerState string

const (
	// BreakerClosed is the normal state; calls flow through
	BreakerClosed BreakerState = "CLOSED"
	// BreakerOpen blocks calls until the cooldown elapses
	BreakerOpen BreakerState = "OPEN"
	// BreakerHalfOpen allows a single probe call after cooldown
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

func (s BreakerState) String() string {
	return string(s)
}
