package brand

import (
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

const (
	// DefaultRequestsPerWindow is the per-brand request allowance
	DefaultRequestsPerWindow = 60

	// DefaultTokensPerWindow is the per-brand token allowance
	DefaultTokensPerWindow = 100_000

	// DefaultQuotaWindow is the sliding quota window length
	DefaultQuotaWindow = time.Hour
)

// QuotaDecision is the structured outcome of a quota check
type QuotaDecision struct {
	Allowed        bool
	Reason         string
	RequestsUsed   int
	RequestsLimit  int
	TokensUsed     int
	TokensLimit    int
	WindowResetsAt time.Time
}

type quotaWindow struct {
	start    time.Time
	requests int
	tokens   int
}

// QuotaService enforces per-brand request and token budgets over a fixed
// window. State is process-local; counters reset when the window rolls
// over. This is a safety net independent of the LLM rate limiter.
type QuotaService struct {
	mu       sync.Mutex
	windows  map[types.BrandID]*quotaWindow
	requests int
	tokens   int
	window   time.Duration
	now      func() time.Time
}

// QuotaOption configures a QuotaService
type QuotaOption func(*QuotaService)

// WithQuotaLimits overrides request and token allowances
func WithQuotaLimits(requests, tokens int) QuotaOption {
	return func(q *QuotaService) {
		if requests > 0 {
			q.requests = requests
		}
		if tokens > 0 {
			q.tokens = tokens
		}
	}
}

// WithQuotaWindow overrides the window length
func WithQuotaWindow(d time.Duration) QuotaOption {
	return func(q *QuotaService) {
		if d > 0 {
			q.window = d
		}
	}
}

// WithQuotaClock injects a clock for tests
func WithQuotaClock(now func() time.Time) QuotaOption {
	return func(q *QuotaService) {
		q.now = now
	}
}

func NewQuotaService(opts ...QuotaOption) *QuotaService {
	q := &QuotaService{
		windows:  make(map[types.BrandID]*quotaWindow),
		requests: DefaultRequestsPerWindow,
		tokens:   DefaultTokensPerWindow,
		window:   DefaultQuotaWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QuotaService) currentWindow(brandID types.BrandID) *quotaWindow {
	w, ok := q.windows[brandID]
	if !ok || q.now().Sub(w.start) >= q.window {
		w = &quotaWindow{start: q.now()}
		q.windows[brandID] = w
	}
	return w
}

// Check reports whether a request of the given token estimate fits in the
// brand's remaining budget, without consuming it
func (q *QuotaService) Check(brandID types.BrandID, tokens int) QuotaDecision {
	q.mu.Lock()
	defer q.mu.Unlock()

	w := q.currentWindow(brandID)
	d := QuotaDecision{
		Allowed:        true,
		RequestsUsed:   w.requests,
		RequestsLimit:  q.requests,
		TokensUsed:     w.tokens,
		TokensLimit:    q.tokens,
		WindowResetsAt: w.start.Add(q.window),
	}

	if w.requests+1 > q.requests {
		d.Allowed = false
		d.Reason = "request quota exceeded for this brand"
		return d
	}
	if tokens > 0 && w.tokens+tokens > q.tokens {
		d.Allowed = false
		d.Reason = "token quota exceeded for this brand"
		return d
	}

	return d
}

// Consume records usage against the brand's window
func (q *QuotaService) Consume(brandID types.BrandID, tokens int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	w := q.currentWindow(brandID)
	w.requests++
	if tokens > 0 {
		w.tokens += tokens
	}
}
