package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
	"github.com/secmon-lab/newsagent/pkg/usecase"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appFile config.AppFile

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the application configuration file",
		Flags:   appFile.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appFile.Path() == "" {
				return goerr.Wrap(config.ErrMissingRequired, "--config is required",
					goerr.V(config.OptionKey, "config"))
			}

			appCfg, err := appFile.Load()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			timeouts, err := appCfg.Timeouts.Parse()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			topK := appCfg.Query.TopK
			if topK == 0 {
				topK = usecase.DefaultTopK
			}

			logger.Info("Configuration validation passed",
				"path", appFile.Path(),
				"title_selectors", len(appCfg.Extractor.TitleSelectors),
				"content_selectors", len(appCfg.Extractor.ContentSelectors),
				"top_k", topK,
				"timeouts", timeouts,
				"normalize_prompt_override", appCfg.Prompts.Normalize != "",
			)
			return nil
		},
	}
}
