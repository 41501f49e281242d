package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"
)

// DefaultEmbeddingDimension matches OpenAI text-embedding-3-small
const DefaultEmbeddingDimension = 1536

// LLM selects the language model provider and the embedding dimension
type LLM struct {
	openai    OpenAI
	gemini    Gemini
	dimension int
}

// Flags returns CLI flags for every supported provider
func (l *LLM) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Category:    "LLM",
			Usage:       "Embedding vector length; must match the vector index",
			Value:       DefaultEmbeddingDimension,
			Sources:     cli.EnvVars("NEWSAGENT_EMBEDDING_DIMENSION"),
			Destination: &l.dimension,
		},
	}
	flags = append(flags, l.openai.Flags()...)
	flags = append(flags, l.gemini.Flags()...)
	return flags
}

// Dimension returns the configured embedding dimension
func (l *LLM) Dimension() int {
	return l.dimension
}

// LogValue implements slog.LogValuer
func (l LLM) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Int("dimension", l.dimension)}
	attrs = append(attrs, slog.Any("openai", slog.GroupValue(l.openai.LogAttrs()...)))
	attrs = append(attrs, slog.Any("gemini", slog.GroupValue(l.gemini.LogAttrs()...)))
	return slog.GroupValue(attrs...)
}

// Configure returns the LLM client. OpenAI takes precedence when both providers are configured.
func (l *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if l.dimension <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "embedding dimension must be positive",
			goerr.V("dimension", l.dimension))
	}

	client, err := l.openai.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}

	client, err = l.gemini.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}

	return nil, goerr.Wrap(ErrMissingRequired, "either --openai-api-key or --gemini-project must be set",
		goerr.V(OptionKey, "openai-api-key"))
}
