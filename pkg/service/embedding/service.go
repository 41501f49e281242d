package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

// Service converts text to a fixed-length vector
type Service interface {
	// Embed returns a vector of Dimension() floats. Provider failures are model.ErrEmbedding.
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
	dimension int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithDimension sets the embedding length L
func WithDimension(dimension int) Option {
	return func(c *client) {
		c.dimension = dimension
	}
}

// New creates a new embedding service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		dimension: model.DefaultEmbeddingDimension,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", c.dimension))
	}

	return c, nil
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, goerr.Wrap(model.ErrEmbedding, "text is empty")
	}

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(model.Classify(model.ErrEmbedding, err), "failed to generate embedding")
	}

	if len(embeddings) == 0 {
		return nil, goerr.Wrap(model.ErrEmbedding, "no embedding returned")
	}

	if len(embeddings[0]) != c.dimension {
		return nil, goerr.Wrap(model.ErrEmbedding, "unexpected embedding dimension",
			goerr.V("expected", c.dimension),
			goerr.V("actual", len(embeddings[0])))
	}

	// Convert float64 to float32
	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}
