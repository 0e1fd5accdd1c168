package llm_test

import (
	"testing"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/llm"
	"github.com/m-mizutani/gt"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	b := llm.NewCircuitBreaker("test/model", llm.WithFailureThreshold(5))

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		gt.Bool(t, b.IsOpen()).False()
	}

	b.RecordFailure()
	gt.Bool(t, b.IsOpen()).True()
	gt.Value(t, b.State()).Equal(types.BreakerOpen)
}

func TestCircuitBreakerHalfOpenAfterCooldown(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	b := llm.NewCircuitBreaker("test/model",
		llm.WithFailureThreshold(2),
		llm.WithCooldown(60*time.Second),
		llm.WithClock(clock),
	)

	b.RecordFailure()
	b.RecordFailure()
	gt.Value(t, b.State()).Equal(types.BreakerOpen)

	// Cooldown not yet elapsed
	now = now.Add(59 * time.Second)
	gt.Value(t, b.State()).Equal(types.BreakerOpen)

	now = now.Add(2 * time.Second)
	gt.Value(t, b.State()).Equal(types.BreakerHalfOpen)

	// One success while half-open closes the circuit and resets counters
	b.RecordSuccess()
	gt.Value(t, b.State()).Equal(types.BreakerClosed)
	gt.Value(t, b.FailureCount()).Equal(0)
}

func TestCircuitBreakerFailureWhileHalfOpenReopens(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	b := llm.NewCircuitBreaker("test/model",
		llm.WithFailureThreshold(1),
		llm.WithCooldown(time.Second),
		llm.WithClock(clock),
	)

	b.RecordFailure()
	gt.Value(t, b.State()).Equal(types.BreakerOpen)

	now = now.Add(2 * time.Second)
	gt.Value(t, b.State()).Equal(types.BreakerHalfOpen)

	b.RecordFailure()
	gt.Value(t, b.State()).Equal(types.BreakerOpen)
}

func TestCircuitBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := llm.NewCircuitBreaker("test/model", llm.WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	gt.Bool(t, b.IsOpen()).False()

	b.RecordFailure()
	gt.Bool(t, b.IsOpen()).True()
}
