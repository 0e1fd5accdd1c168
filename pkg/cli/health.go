package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func cmdHealth() *cli.Command {
	var brandID string
	var rt runtime

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "brand-id",
			Usage:       "Brand whose knowledge base should be inspected",
			Required:    true,
			Destination: &brandID,
		},
	}
	flags = append(flags, rt.flags()...)

	return &cli.Command{
		Name:  "health",
		Usage: "Check knowledge base and provider health for a brand",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			health, err := uc.Engine().CheckHealth(ctx, types.BrandID(brandID))
			if err != nil {
				return goerr.Wrap(err, "failed to check knowledge health")
			}

			if health.Error != "" {
				fmt.Printf("%s %s\n", color.RedString("✗"), health.Error)
				return nil
			}

			status := color.GreenString("healthy")
			if !health.Healthy {
				status = color.YellowString("degraded")
			}
			fmt.Printf("Knowledge base: %s\n", status)
			fmt.Printf("  sources:    %d total, %d active\n", health.TotalSources, health.ActiveSources)
			fmt.Printf("  embeddings: %d stored (dimension %d)\n", health.StoredEmbeddings, health.VectorDimension)
			fmt.Printf("  identity:   %d field(s) populated\n", health.IdentityFields)

			if uc.Provider().HealthCheck(ctx) {
				fmt.Printf("LLM providers:  %s\n", color.GreenString("reachable"))
			} else {
				fmt.Printf("LLM providers:  %s\n", color.RedString("unreachable"))
			}
			return nil
		},
	}
}
