package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var pipeCfg pipelineConfig

	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Run the ingestion pipeline for the given article URLs",
		ArgsUsage: "<url> [url...]",
		Flags:     pipeCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			urls := c.Args().Slice()
			if len(urls) == 0 {
				return goerr.New("at least one URL is required")
			}

			pipe, err := pipeCfg.build(ctx, c.Root().Version)
			if err != nil {
				return err
			}
			defer pipe.Close()

			var failed int
			for _, u := range urls {
				article, err := pipe.UseCases.Ingest.Ingest(ctx, u)
				if err != nil {
					failed++
					continue
				}
				logging.Default().Info("Article ingested", "url", article.URL, "title", article.Title)
			}

			if failed > 0 {
				return goerr.New("some articles failed to ingest",
					goerr.V("failed", failed), goerr.V("total", len(urls)))
			}
			return nil
		},
	}
}
