package llm

import (
	"context"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

const defaultMaxRetries = 2

// LoadBalancer wraps an ordered list of LLM providers with per-provider
// circuit breakers and a shared rate limiter, exposing them as one
// resilient provider. The first provider is the primary; the rest are
// fallbacks tried in order.
type LoadBalancer struct {
	providers  []interfaces.LLMProvider
	breakers   []*CircuitBreaker
	limiter    *RateLimiter
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

var _ interfaces.LLMProvider = &LoadBalancer{}

// BalancerOption configures a LoadBalancer
type BalancerOption func(*LoadBalancer)

// WithMaxRetries overrides per-provider retry count. A provider is
// attempted maxRetries+1 times before moving on.
func WithMaxRetries(n int) BalancerOption {
	return func(lb *LoadBalancer) {
		if n >= 0 {
			lb.maxRetries = n
		}
	}
}

// WithRateLimiter sets the shared pacing limiter
func WithRateLimiter(limiter *RateLimiter) BalancerOption {
	return func(lb *LoadBalancer) {
		lb.limiter = limiter
	}
}

// WithBreakerOptions applies breaker options to every provider breaker
func WithBreakerOptions(opts ...BreakerOption) BalancerOption {
	return func(lb *LoadBalancer) {
		for i, p := range lb.providers {
			lb.breakers[i] = NewCircuitBreaker(p.ID(), opts...)
		}
	}
}

// WithSleeper injects the backoff sleep function for tests
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) BalancerOption {
	return func(lb *LoadBalancer) {
		lb.sleep = sleep
	}
}

// NewLoadBalancer creates a balancer over the given providers. The order
// of providers is the failover order.
func NewLoadBalancer(providers []interfaces.LLMProvider, opts ...BalancerOption) *LoadBalancer {
	lb := &LoadBalancer{
		providers:  providers,
		breakers:   make([]*CircuitBreaker, len(providers)),
		limiter:    NewRateLimiter(0),
		maxRetries: defaultMaxRetries,
		sleep:      sleepContext,
	}
	for i, p := range providers {
		lb.breakers[i] = NewCircuitBreaker(p.ID())
	}
	for _, opt := range opts {
		opt(lb)
	}
	return lb
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ID identifies the balancer by its primary provider
func (lb *LoadBalancer) ID() string {
	if len(lb.providers) == 0 {
		return "balancer/empty"
	}
	return "balancer/" + lb.providers[0].ID()
}

// Breaker exposes the breaker of the i-th provider, used by tests and the
// health endpoint
func (lb *LoadBalancer) Breaker(i int) *CircuitBreaker {
	return lb.breakers[i]
}

// Generate tries each provider in order until one succeeds. Providers with
// an open breaker are skipped. Each provider gets maxRetries+1 attempts
// with exponential backoff between attempts, except for not-found errors
// which abandon the provider immediately.
func (lb *LoadBalancer) Generate(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	logger := logging.From(ctx)

	var lastErr error
	for i, provider := range lb.providers {
		breaker := lb.breakers[i]
		if breaker.IsOpen() {
			logger.Debug("skipping provider with open circuit", "provider", provider.ID())
			continue
		}

		for retry := 0; retry <= lb.maxRetries; retry++ {
			if retry > 0 {
				backoff := time.Duration(1<<uint(retry)) * time.Second
				if err := lb.sleep(ctx, backoff); err != nil {
					return "", goerr.Wrap(err, "backoff interrupted")
				}
			}

			// Global pacing across all providers, before every attempt
			if err := lb.limiter.Wait(ctx); err != nil {
				return "", goerr.Wrap(err, "rate limiter wait interrupted")
			}

			result, err := provider.Generate(ctx, req)
			if err == nil {
				breaker.RecordSuccess()
				return result, nil
			}

			lastErr = err
			breaker.RecordFailure()
			logger.Warn("LLM generation attempt failed",
				"provider", provider.ID(),
				"retry", retry,
				"error", err.Error(),
			)

			if isNotFoundError(err) {
				logger.Warn("provider endpoint or model missing, abandoning retries",
					"provider", provider.ID())
				break
			}
		}
	}

	if lastErr == nil {
		return "", goerr.Wrap(ErrAllProvidersFailed, "no provider available")
	}
	return "", goerr.Wrap(ErrAllProvidersFailed, "exhausted all providers", goerr.V("last_error", lastErr.Error()))
}

// HealthCheck reports true when at least one provider has a non-open
// breaker and answers its own health probe. Probes run concurrently.
func (lb *LoadBalancer) HealthCheck(ctx context.Context) bool {
	healthy := make([]bool, len(lb.providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, provider := range lb.providers {
		if lb.breakers[i].IsOpen() {
			continue
		}
		g.Go(func() error {
			healthy[i] = provider.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range healthy {
		if ok {
			return true
		}
	}
	return false
}
