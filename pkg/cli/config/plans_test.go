package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/atelier-lab/brandloom/pkg/cli/config"
	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadPlanOverrides(t *testing.T) {
	t.Run("valid plan file", func(t *testing.T) {
		path := writePlanFile(t, `
[[plan]]
intent = "generate_content"
steps = ["build_brief", "generate_copy", "review_tone"]

[[plan]]
intent = "schedule_post"
steps = ["validate_schedule", "queue_publication"]
`)

		overrides, err := config.LoadPlanOverrides(path)
		gt.NoError(t, err).Required()
		gt.Value(t, len(overrides)).Equal(2)
		gt.Value(t, overrides[types.IntentGenerateContent]).Equal([]string{"build_brief", "generate_copy", "review_tone"})
		gt.Value(t, overrides[types.IntentSchedulePost]).Equal([]string{"validate_schedule", "queue_publication"})
	})

	t.Run("unknown intent is rejected", func(t *testing.T) {
		path := writePlanFile(t, `
[[plan]]
intent = "launch_rockets"
steps = ["countdown"]
`)

		_, err := config.LoadPlanOverrides(path)
		gt.Error(t, err)
	})

	t.Run("lightweight intent is rejected", func(t *testing.T) {
		path := writePlanFile(t, `
[[plan]]
intent = "general_chat"
steps = ["respond"]
`)

		_, err := config.LoadPlanOverrides(path)
		gt.Error(t, err)
	})

	t.Run("empty steps are rejected", func(t *testing.T) {
		path := writePlanFile(t, `
[[plan]]
intent = "generate_content"
steps = []
`)

		_, err := config.LoadPlanOverrides(path)
		gt.Error(t, err)
	})

	t.Run("duplicate intents are rejected", func(t *testing.T) {
		path := writePlanFile(t, `
[[plan]]
intent = "generate_content"
steps = ["a"]

[[plan]]
intent = "generate_content"
steps = ["b"]
`)

		_, err := config.LoadPlanOverrides(path)
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPlanOverrides(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err)
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := writePlanFile(t, `[[plan] intent = broken`)

		_, err := config.LoadPlanOverrides(path)
		gt.Error(t, err)
	})
}
