package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func cmdEmbed() *cli.Command {
	var brandID string
	var rt runtime

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "brand-id",
			Usage:       "Brand whose knowledge should be embedded",
			Required:    true,
			Destination: &brandID,
		},
	}
	flags = append(flags, rt.flags()...)

	return &cli.Command{
		Name:  "embed",
		Usage: "Generate embeddings for a brand's knowledge sources",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			report, err := uc.Engine().EmbedBrandKnowledge(ctx, types.BrandID(brandID))
			if err != nil {
				return goerr.Wrap(err, "failed to embed brand knowledge")
			}

			fmt.Printf("%s embedded %d chunk(s), skipped %d, %d error(s)\n",
				color.GreenString("done:"), report.Embedded, report.Skipped, report.Errors)
			return nil
		},
	}
}
