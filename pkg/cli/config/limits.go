package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/service/brand"
)

// Limits holds CLI flags for per-brand quota enforcement
type Limits struct {
	requestsPerWindow int
	tokensPerWindow   int
	window            time.Duration
}

// Flags returns CLI flags for quota configuration
func (l *Limits) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "quota-requests",
			Usage:       "Per-brand request allowance per window",
			Value:       brand.DefaultRequestsPerWindow,
			Sources:     cli.EnvVars("BRANDLOOM_QUOTA_REQUESTS"),
			Destination: &l.requestsPerWindow,
		},
		&cli.IntFlag{
			Name:        "quota-tokens",
			Usage:       "Per-brand token allowance per window",
			Value:       brand.DefaultTokensPerWindow,
			Sources:     cli.EnvVars("BRANDLOOM_QUOTA_TOKENS"),
			Destination: &l.tokensPerWindow,
		},
		&cli.DurationFlag{
			Name:        "quota-window",
			Usage:       "Quota window length",
			Value:       brand.DefaultQuotaWindow,
			Sources:     cli.EnvVars("BRANDLOOM_QUOTA_WINDOW"),
			Destination: &l.window,
		},
	}
}

// Configure builds the quota service from the flags
func (l *Limits) Configure() *brand.QuotaService {
	return brand.NewQuotaService(
		brand.WithQuotaLimits(l.requestsPerWindow, l.tokensPerWindow),
		brand.WithQuotaWindow(l.window),
	)
}
