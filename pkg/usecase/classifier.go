package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/atelier-lab/brandloom/pkg/domain/interfaces"
	"github.com/atelier-lab/brandloom/pkg/domain/model"
	"github.com/atelier-lab/brandloom/pkg/domain/types"

	"github.com/atelier-lab/brandloom/pkg/utils/logging"
)

const (
	// DefaultClassifyTimeout bounds one classification LLM call
	DefaultClassifyTimeout = 30 * time.Second

	// defaultHistoryTurns is how many prior turns the classifier sees
	defaultHistoryTurns = 6
)

// Classification is the structured outcome of intent classification
type Classification struct {
	Intent   types.Intent   `json:"intent"`
	Params   map[string]any `json:"params"`
	Response string         `json:"response"`
}

// intentParams documents required parameters per intent inside the system
// prompt so the model fills them consistently
var intentParams = map[types.Intent]string{
	types.IntentGeneralChat:     "none",
	types.IntentIntroduction:    "none",
	types.IntentHelp:            "none",
	types.IntentGenerateContent: "platform (string), topic (string), tone (string, optional)",
	types.IntentSchedulePost:    "content_id (string), scheduled_at (ISO 8601 string), platform (string)",
	types.IntentListContent:     "platform (string, optional), limit (number, optional)",
	types.IntentDeleteContent:   "content_id (string)",
	types.IntentUpdateSettings:  "setting (string), value (string)",
	types.IntentBrandSummary:    "none",
}

// Classifier turns a free-text message into a structured intent using an
// injected LLM provider. It has no side effects beyond the LLM call and
// never fails on malformed model output.
type Classifier struct {
	provider     interfaces.LLMProvider
	timeout      time.Duration
	historyTurns int
}

// ClassifierOption configures a Classifier
type ClassifierOption func(*Classifier)

// WithClassifyTimeout overrides the LLM call timeout
func WithClassifyTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHistoryTurns overrides how many history turns reach the prompt
func WithHistoryTurns(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.historyTurns = n
		}
	}
}

// NewClassifier creates a classifier over the given provider
func NewClassifier(provider interfaces.LLMProvider, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		provider:     provider,
		timeout:      DefaultClassifyTimeout,
		historyTurns: defaultHistoryTurns,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify determines the intent of a message. The userContext carries
// personalization and RAG blocks and is opaque here. Deterministic mode
// forces temperature zero for reproducible output.
func (c *Classifier) Classify(ctx context.Context, message, userContext string, history []model.ChatTurn, deterministic bool) (*Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := 0.7
	if deterministic {
		temperature = 0
	}

	raw, err := c.provider.Generate(ctx, interfaces.GenerateRequest{
		SystemPrompt: c.systemPrompt(userContext),
		Prompt:       c.userPrompt(message, history),
		Temperature:  temperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	return parseClassification(ctx, raw), nil
}

func (c *Classifier) systemPrompt(userContext string) string {
	var b strings.Builder
	b.WriteString("You are a brand content assistant. Classify the user's message into exactly one intent and respond.\n\n")
	b.WriteString("Allowed intents and their required params:\n")
	for _, intent := range types.AllIntents() {
		fmt.Fprintf(&b, "- %s: %s\n", intent, intentParams[intent])
	}
	b.WriteString("\nAnswer with a single JSON object: {\"intent\": \"...\", \"params\": {...}, \"response\": \"natural language reply\"}\n")
	b.WriteString("The response field must always contain a helpful natural-language reply.\n")
	if userContext != "" {
		b.WriteString("\n")
		b.WriteString(userContext)
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Classifier) userPrompt(message string, history []model.ChatTurn) string {
	if len(history) > c.historyTurns {
		history = history[len(history)-c.historyTurns:]
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("Current message: ")
	b.WriteString(message)
	return b.String()
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
var intentObjectRe = regexp.MustCompile(`(?s)\{[^{}]*"intent"\s*:.*?\}`)

// parseClassification recovers a structured classification from model
// output. Stages run in order: direct parse, fenced code block, loose scan
// for an object holding an "intent" key, then a plain-text fallback that
// treats the raw output as a general chat reply. It never fails.
func parseClassification(ctx context.Context, raw string) *Classification {
	if c := tryParseJSON(raw); c != nil {
		return c
	}
	if c := tryParseFencedBlock(raw); c != nil {
		return c
	}
	if c := tryParseIntentScan(raw); c != nil {
		return c
	}

	logging.From(ctx).Warn("classifier output unparseable, falling back to general chat",
		"raw_length", len(raw),
	)
	return &Classification{
		Intent:   types.IntentGeneralChat,
		Params:   map[string]any{},
		Response: strings.TrimSpace(raw),
	}
}

func tryParseJSON(raw string) *Classification {
	var c Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &c); err != nil {
		return nil
	}
	return normalizeClassification(&c)
}

func tryParseFencedBlock(raw string) *Classification {
	m := fencedBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return tryParseJSON(m[1])
}

func tryParseIntentScan(raw string) *Classification {
	for _, candidate := range intentObjectRe.FindAllString(raw, -1) {
		if c := tryParseJSON(candidate); c != nil {
			return c
		}
	}
	return nil
}

// normalizeClassification validates the parsed object. Unknown intents
// collapse to general chat instead of propagating arbitrary strings.
func normalizeClassification(c *Classification) *Classification {
	if c.Intent == "" {
		return nil
	}
	if !c.Intent.IsValid() {
		c.Intent = types.IntentGeneralChat
	}
	if c.Params == nil {
		c.Params = map[string]any{}
	}
	return c
}
