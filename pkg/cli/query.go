package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdQuery() *cli.Command {
	var pipeCfg pipelineConfig
	var summarize bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "summarize",
			Usage:       "Treat the argument as an article URL and summarize it without storing",
			Destination: &summarize,
		},
	}
	flags = append(flags, pipeCfg.Flags()...)

	return &cli.Command{
		Name:      "query",
		Aliases:   []string{"q"},
		Usage:     "Ask a question over the ingested articles",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return goerr.New("question is required")
			}

			pipe, err := pipeCfg.build(ctx, c.Root().Version)
			if err != nil {
				return err
			}
			defer pipe.Close()

			var result *model.QueryResult
			if summarize {
				result, err = pipe.UseCases.Query.SummarizeArticle(ctx, text)
			} else {
				result, err = pipe.UseCases.Query.Query(ctx, text)
			}
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if c.Root().Writer != nil {
				w = c.Root().Writer
			}
			printResult(w, result)
			return nil
		},
	}
}

func printResult(w io.Writer, result *model.QueryResult) {
	heading := color.New(color.FgCyan, color.Bold)
	title := color.New(color.FgGreen)
	faint := color.New(color.FgHiBlack)

	_, _ = heading.Fprintln(w, "Answer")
	_, _ = fmt.Fprintln(w, result.Answer)

	if len(result.Sources) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	_, _ = heading.Fprintln(w, "Sources")
	for i, src := range result.Sources {
		_, _ = fmt.Fprintf(w, "[%d] ", i+1)
		_, _ = title.Fprintln(w, src.Title)
		_, _ = faint.Fprintf(w, "    %s  %s\n", src.URL, src.Date)
	}
}
