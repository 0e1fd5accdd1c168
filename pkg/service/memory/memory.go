package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// maxTopics is how many recent topics are retained per user
const maxTopics = 10

// Entry is the in-memory personalization record of one user. Best effort
// and process-scoped; the durable chat log is the source of truth across
// restarts.
type Entry struct {
	IntentCounts      map[types.Intent]int
	RecentTopics      []string
	PreferredPlatform string
	PreferredTone     string
	FirstSeen         time.Time
	LastSeen          time.Time
}

// UserMemory tracks per-user interaction state for personalization. It is
// constructed once at process start and injected wherever needed; state is
// never persisted and cleared only by explicit Reset calls.
type UserMemory struct {
	mu      sync.RWMutex
	entries map[types.UserID]*Entry
	now     func() time.Time
}

// Option configures a UserMemory
type Option func(*UserMemory)

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(m *UserMemory) {
		m.now = now
	}
}

func New(opts ...Option) *UserMemory {
	m := &UserMemory{
		entries: make(map[types.UserID]*Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record notes one interaction: the classified intent and the topic of the
// message. Empty topics are ignored.
func (m *UserMemory) Record(userID types.UserID, intent types.Intent, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		e = &Entry{
			IntentCounts: make(map[types.Intent]int),
			FirstSeen:    m.now(),
		}
		m.entries[userID] = e
	}

	e.IntentCounts[intent]++
	e.LastSeen = m.now()

	topic = strings.TrimSpace(topic)
	if topic != "" {
		e.RecentTopics = append(e.RecentTopics, topic)
		if len(e.RecentTopics) > maxTopics {
			e.RecentTopics = e.RecentTopics[len(e.RecentTopics)-maxTopics:]
		}
	}
}

// SetPreferences updates the last known platform and tone preferences.
// Empty values leave the existing preference untouched.
func (m *UserMemory) SetPreferences(userID types.UserID, platform, tone string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		e = &Entry{
			IntentCounts: make(map[types.Intent]int),
			FirstSeen:    m.now(),
		}
		m.entries[userID] = e
	}
	if platform != "" {
		e.PreferredPlatform = platform
	}
	if tone != "" {
		e.PreferredTone = tone
	}
}

// Get returns a copy of the user's entry, or nil when the user is unknown
func (m *UserMemory) Get(userID types.UserID) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok {
		return nil
	}

	cp := &Entry{
		IntentCounts:      make(map[types.Intent]int, len(e.IntentCounts)),
		RecentTopics:      append([]string(nil), e.RecentTopics...),
		PreferredPlatform: e.PreferredPlatform,
		PreferredTone:     e.PreferredTone,
		FirstSeen:         e.FirstSeen,
		LastSeen:          e.LastSeen,
	}
	for k, v := range e.IntentCounts {
		cp.IntentCounts[k] = v
	}
	return cp
}

// ContextBlock renders the user's memory as a short personalization block
// for prompt injection. Unknown users get an empty string.
func (m *UserMemory) ContextBlock(userID types.UserID) string {
	e := m.Get(userID)
	if e == nil {
		return ""
	}

	var lines []string

	if len(e.IntentCounts) > 0 {
		type pair struct {
			intent types.Intent
			count  int
		}
		pairs := make([]pair, 0, len(e.IntentCounts))
		for intent, count := range e.IntentCounts {
			pairs = append(pairs, pair{intent, count})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].count != pairs[j].count {
				return pairs[i].count > pairs[j].count
			}
			return pairs[i].intent < pairs[j].intent
		})
		top := pairs
		if len(top) > 3 {
			top = top[:3]
		}
		parts := make([]string, len(top))
		for i, p := range top {
			parts[i] = fmt.Sprintf("%s (%d)", p.intent, p.count)
		}
		lines = append(lines, "Frequent requests: "+strings.Join(parts, ", "))
	}

	if len(e.RecentTopics) > 0 {
		topics := e.RecentTopics
		if len(topics) > 5 {
			topics = topics[len(topics)-5:]
		}
		lines = append(lines, "Recent topics: "+strings.Join(topics, "; "))
	}
	if e.PreferredPlatform != "" {
		lines = append(lines, "Preferred platform: "+e.PreferredPlatform)
	}
	if e.PreferredTone != "" {
		lines = append(lines, "Preferred tone: "+e.PreferredTone)
	}

	if len(lines) == 0 {
		return ""
	}
	return "User context:\n" + strings.Join(lines, "\n")
}

// Reset clears the entry of one user
func (m *UserMemory) Reset(userID types.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
}
