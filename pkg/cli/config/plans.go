package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

// Plans holds CLI flags for static plan overrides
type Plans struct {
	path string
}

// PlanEntry is one intent-to-steps override in the plan file
type PlanEntry struct {
	Intent string   `toml:"intent"`
	Steps  []string `toml:"steps"`
}

// PlanFile is the TOML document shape of a plan override file
type PlanFile struct {
	Plans []PlanEntry `toml:"plan"`
}

// Validate checks if the PlanEntry is valid
func (p *PlanEntry) Validate() error {
	intent := types.Intent(p.Intent)
	if !intent.IsValid() {
		return goerr.New("unknown intent", goerr.V("intent", p.Intent))
	}
	if intent.IsLightweight() {
		return goerr.New("lightweight intents cannot have plans", goerr.V("intent", p.Intent))
	}
	if len(p.Steps) == 0 {
		return goerr.New("plan requires at least one step", goerr.V("intent", p.Intent))
	}
	for _, step := range p.Steps {
		if step == "" {
			return goerr.New("plan steps must not be empty", goerr.V("intent", p.Intent))
		}
	}
	return nil
}

// Flags returns CLI flags for plan configuration
func (p *Plans) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "plan-file",
			Usage:       "TOML file overriding static plan steps per intent",
			Sources:     cli.EnvVars("BRANDLOOM_PLAN_FILE"),
			Destination: &p.path,
		},
	}
}

// Configure loads plan overrides from the configured TOML file. Returns nil
// when no file is configured, which keeps the built-in plans.
func (p *Plans) Configure() (map[types.Intent][]string, error) {
	if p.path == "" {
		return nil, nil
	}
	return LoadPlanOverrides(p.path)
}

// LoadPlanOverrides loads and validates plan overrides from a TOML file
func LoadPlanOverrides(path string) (map[types.Intent][]string, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read plan file", goerr.V("path", path))
	}

	var file PlanFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML plan file", goerr.V("path", path))
	}

	overrides := make(map[types.Intent][]string, len(file.Plans))
	for _, entry := range file.Plans {
		if err := entry.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid plan entry", goerr.V("path", path))
		}
		intent := types.Intent(entry.Intent)
		if _, ok := overrides[intent]; ok {
			return nil, goerr.New("duplicate plan entry", goerr.V("intent", entry.Intent))
		}
		overrides[intent] = entry.Steps
	}

	return overrides, nil
}
