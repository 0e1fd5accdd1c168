package llm

import (
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

const (
	// DefaultFailureThreshold is the number of consecutive failures that
	// opens the circuit
	DefaultFailureThreshold = 5

	// DefaultCooldown is how long an open circuit waits before allowing a
	// probe call
	DefaultCooldown = 60 * time.Second
)

// CircuitBreaker tracks failures of one provider and blocks traffic to it
// after repeated errors. The state is computed on read; there are no
// background timers. State is process-local and not safe to share across
// processes.
type CircuitBreaker struct {
	mu               sync.Mutex
	providerID       string
	failureThreshold int
	cooldown         time.Duration
	failureCount     int
	successCount     int
	lastFailure      time.Time
	open             bool
	halfOpen         bool
	now              func() time.Time
}

// BreakerOption configures a CircuitBreaker
type BreakerOption func(*CircuitBreaker)

// WithFailureThreshold overrides the consecutive failure count that opens
// the circuit
func WithFailureThreshold(n int) BreakerOption {
	return func(b *CircuitBreaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown overrides the open-state cooldown
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *CircuitBreaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) {
		b.now = now
	}
}

// NewCircuitBreaker creates a breaker for the given provider identity
func NewCircuitBreaker(providerID string, opts ...BreakerOption) *CircuitBreaker {
	b := &CircuitBreaker{
		providerID:       providerID,
		failureThreshold: DefaultFailureThreshold,
		cooldown:         DefaultCooldown,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current breaker state. Reading the state of an open
// breaker whose cooldown has elapsed transitions it to HALF_OPEN.
func (b *CircuitBreaker) State() types.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *CircuitBreaker) stateLocked() types.BreakerState {
	if b.open {
		if b.now().Sub(b.lastFailure) >= b.cooldown {
			b.open = false
			b.halfOpen = true
			b.logTransition(types.BreakerOpen, types.BreakerHalfOpen)
		} else {
			return types.BreakerOpen
		}
	}
	if b.halfOpen {
		return types.BreakerHalfOpen
	}
	return types.BreakerClosed
}

// IsOpen reports whether calls should be blocked
func (b *CircuitBreaker) IsOpen() bool {
	return b.State() == types.BreakerOpen
}

// FailureCount returns the consecutive failure count, exposed for the
// health endpoint
func (b *CircuitBreaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// RecordSuccess notes a successful call. A success while half-open closes
// the circuit and resets the failure counter.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.stateLocked()
	b.successCount++
	b.failureCount = 0
	if b.halfOpen {
		b.halfOpen = false
		b.logTransition(prev, types.BreakerClosed)
	}
}

// RecordFailure notes a failed call. Reaching the failure threshold, or any
// failure while half-open, opens the circuit.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.stateLocked()
	b.failureCount++
	b.lastFailure = b.now()

	if b.halfOpen {
		b.halfOpen = false
		b.open = true
		b.logTransition(prev, types.BreakerOpen)
		return
	}

	if !b.open && b.failureCount >= b.failureThreshold {
		b.open = true
		b.logTransition(prev, types.BreakerOpen)
	}
}

func (b *CircuitBreaker) logTransition(from, to types.BreakerState) {
	logging.Default().Info("circuit breaker state changed",
		"provider", b.providerID,
		"from", from.String(),
		"to", to.String(),
		"failure_count", b.failureCount,
	)
}
