package usecase_test

import (
	"context"
	"testing"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
	"github.com/atelier-lab/brandloom/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestParseClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("direct JSON", func(t *testing.T) {
		c := usecase.ParseClassification(ctx, `{"intent": "generate_content", "params": {"platform": "instagram"}, "response": "On it"}`)
		gt.Value(t, c.Intent).Equal(types.IntentGenerateContent)
		gt.Value(t, c.Params["platform"]).Equal("instagram")
		gt.Value(t, c.Response).Equal("On it")
	})

	t.Run("fenced code block", func(t *testing.T) {
		raw := "Here is my answer:\n```json\n{\"intent\": \"help\", \"params\": {}, \"response\": \"Sure\"}\n```\nHope that helps."
		c := usecase.ParseClassification(ctx, raw)
		gt.Value(t, c.Intent).Equal(types.IntentHelp)
		gt.Value(t, c.Response).Equal("Sure")
	})

	t.Run("loose scan for intent object", func(t *testing.T) {
		raw := `The classification is {"intent": "brand_summary", "response": "Summary coming"} as requested.`
		c := usecase.ParseClassification(ctx, raw)
		gt.Value(t, c.Intent).Equal(types.IntentBrandSummary)
	})

	t.Run("plain text falls back to general chat", func(t *testing.T) {
		c := usecase.ParseClassification(ctx, "Happy to chat about your brand anytime!")
		gt.Value(t, c.Intent).Equal(types.IntentGeneralChat)
		gt.Value(t, c.Response).Equal("Happy to chat about your brand anytime!")
		gt.Value(t, c.Params).NotNil()
	})

	t.Run("unknown intent collapses to general chat", func(t *testing.T) {
		c := usecase.ParseClassification(ctx, `{"intent": "launch_rockets", "response": "No"}`)
		gt.Value(t, c.Intent).Equal(types.IntentGeneralChat)
	})

	t.Run("missing params map is filled", func(t *testing.T) {
		c := usecase.ParseClassification(ctx, `{"intent": "help", "response": "ok"}`)
		gt.Value(t, c.Params).NotNil()
	})
}
