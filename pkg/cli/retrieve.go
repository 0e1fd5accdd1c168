package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/atelier-lab/brandloom/pkg/domain/types"
)

func cmdRetrieve() *cli.Command {
	var brandID string
	var query string
	var rt runtime

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "brand-id",
			Usage:       "Brand whose knowledge should be queried",
			Required:    true,
			Destination: &brandID,
		},
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Query text to retrieve against",
			Required:    true,
			Destination: &query,
		},
	}
	flags = append(flags, rt.flags()...)

	return &cli.Command{
		Name:  "retrieve",
		Usage: "Run a test retrieval against a brand's knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			result, err := uc.Engine().TestRetrieval(ctx, types.BrandID(brandID), query)
			if err != nil {
				return goerr.Wrap(err, "failed to run retrieval")
			}

			fmt.Printf("strategy: %s, sufficient: %t\n", result.Strategy, result.IsSufficient)
			if result.Warning != "" {
				fmt.Printf("%s %s\n", color.YellowString("warning:"), result.Warning)
			}
			for i, chunk := range result.Chunks {
				fmt.Printf("%s [%s] %s (%.2f)\n",
					color.CyanString("%2d.", i+1), chunk.SourceType, chunk.SourceName, chunk.Similarity)
				fmt.Printf("    %s\n", chunk.Text)
			}
			if len(result.Chunks) == 0 {
				fmt.Println("no chunks retrieved")
			}
			return nil
		},
	}
}
