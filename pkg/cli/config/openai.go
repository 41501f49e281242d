package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// OpenAI holds configuration for the OpenAI LLM client
type OpenAI struct {
	apiKey string
	model  string
}

// Flags returns CLI flags for OpenAI configuration
func (o *OpenAI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Category:    "LLM",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("NEWSAGENT_OPENAI_API_KEY"),
			Destination: &o.apiKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Category:    "LLM",
			Usage:       "OpenAI chat model used for normalization and answers",
			Value:       "gpt-4o-mini",
			Sources:     cli.EnvVars("NEWSAGENT_OPENAI_MODEL"),
			Destination: &o.model,
		},
	}
}

// LogAttrs returns log attributes for the OpenAI configuration. The key is never logged.
func (o *OpenAI) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("api_key_set", o.apiKey != ""),
		slog.String("model", o.model),
	}
}

// Configure creates a new OpenAI LLM client. Returns nil if no API key is set.
func (o *OpenAI) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if o.apiKey == "" {
		return nil, nil
	}

	client, err := openai.New(ctx, o.apiKey, openai.WithModel(o.model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OpenAI client", goerr.V("model", o.model))
	}

	return client, nil
}
