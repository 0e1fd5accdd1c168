package memory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/service/memory"
	"github.com/m-mizutani/gt"
)

func TestUserMemoryRecord(t *testing.T) {
	m := memory.New()
	userID := types.UserID("user-1")

	gt.Value(t, m.Get(userID)).Nil()

	m.Record(userID, types.IntentGenerateContent, "spring campaign")
	m.Record(userID, types.IntentGenerateContent, "product launch")
	m.Record(userID, types.IntentGeneralChat, "")

	e := m.Get(userID)
	gt.Value(t, e).NotNil()
	gt.Value(t, e.IntentCounts[types.IntentGenerateContent]).Equal(2)
	gt.Value(t, e.IntentCounts[types.IntentGeneralChat]).Equal(1)
	gt.Value(t, e.RecentTopics).Equal([]string{"spring campaign", "product launch"})
	gt.Bool(t, e.FirstSeen.IsZero()).False()
}

func TestUserMemoryTopicsBounded(t *testing.T) {
	m := memory.New()
	userID := types.UserID("user-1")

	for i := 0; i < 15; i++ {
		m.Record(userID, types.IntentGeneralChat, string(rune('a'+i)))
	}

	e := m.Get(userID)
	gt.Value(t, len(e.RecentTopics)).Equal(10)
	gt.Value(t, e.RecentTopics[0]).Equal("f")
	gt.Value(t, e.RecentTopics[9]).Equal("o")
}

func TestUserMemoryContextBlock(t *testing.T) {
	m := memory.New()
	userID := types.UserID("user-1")

	gt.Value(t, m.ContextBlock(userID)).Equal("")

	m.Record(userID, types.IntentGenerateContent, "spring campaign")
	m.SetPreferences(userID, "instagram", "playful")

	block := m.ContextBlock(userID)
	gt.Bool(t, strings.Contains(block, "generate_content")).True()
	gt.Bool(t, strings.Contains(block, "spring campaign")).True()
	gt.Bool(t, strings.Contains(block, "instagram")).True()
	gt.Bool(t, strings.Contains(block, "playful")).True()
}

func TestUserMemoryGetReturnsCopy(t *testing.T) {
	m := memory.New()
	userID := types.UserID("user-1")

	m.Record(userID, types.IntentGeneralChat, "topic")
	e := m.Get(userID)
	e.IntentCounts[types.IntentGeneralChat] = 99
	e.RecentTopics[0] = "mutated"

	fresh := m.Get(userID)
	gt.Value(t, fresh.IntentCounts[types.IntentGeneralChat]).Equal(1)
	gt.Value(t, fresh.RecentTopics[0]).Equal("topic")
}

func TestUserMemoryReset(t *testing.T) {
	m := memory.New()
	userID := types.UserID("user-1")

	m.Record(userID, types.IntentGeneralChat, "topic")
	m.Reset(userID)
	gt.Value(t, m.Get(userID)).Nil()
}

func TestUserMemoryClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := memory.New(memory.WithClock(clock))
	userID := types.UserID("user-1")

	m.Record(userID, types.IntentGeneralChat, "")
	now = now.Add(time.Hour)
	m.Record(userID, types.IntentGeneralChat, "")

	e := m.Get(userID)
	gt.Value(t, e.FirstSeen).Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	gt.Value(t, e.LastSeen).Equal(time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))
}
