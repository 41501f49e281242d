package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/embedding"
)

type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return m.generateEmbeddingFn(ctx, dimension, input)
}

func TestEmbed(t *testing.T) {
	t.Run("returns vector of configured dimension", func(t *testing.T) {
		var gotDim int
		var gotInput []string
		svc, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				gotDim = dimension
				gotInput = input
				return [][]float64{{0.5, 0.25, 0.125, 1}}, nil
			},
		}, embedding.WithDimension(4))
		gt.NoError(t, err).Required()

		vec, err := svc.Embed(context.Background(), "Foo\nBar baz")
		gt.NoError(t, err).Required()
		gt.Value(t, gotDim).Equal(4)
		gt.Array(t, gotInput).Equal([]string{"Foo\nBar baz"})
		gt.Array(t, vec).Equal([]float32{0.5, 0.25, 0.125, 1})
		gt.Value(t, svc.Dimension()).Equal(4)
	})

	t.Run("provider failure is embedding error", func(t *testing.T) {
		svc, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("rate limited")
			},
		})
		gt.NoError(t, err).Required()

		_, err = svc.Embed(context.Background(), "text")
		gt.Bool(t, errors.Is(err, model.ErrEmbedding)).True()
	})

	t.Run("empty result is embedding error", func(t *testing.T) {
		svc, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{}, nil
			},
		})
		gt.NoError(t, err).Required()

		_, err = svc.Embed(context.Background(), "text")
		gt.Bool(t, errors.Is(err, model.ErrEmbedding)).True()
	})

	t.Run("wrong dimension is embedding error", func(t *testing.T) {
		svc, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{{1, 2}}, nil
			},
		}, embedding.WithDimension(3))
		gt.NoError(t, err).Required()

		_, err = svc.Embed(context.Background(), "text")
		gt.Bool(t, errors.Is(err, model.ErrEmbedding)).True()
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		svc, err := embedding.New(&mockLLMClient{})
		gt.NoError(t, err).Required()

		_, err = svc.Embed(context.Background(), "")
		gt.Bool(t, errors.Is(err, model.ErrEmbedding)).True()
	})
}

func TestNew(t *testing.T) {
	_, err := embedding.New(nil)
	gt.Value(t, err).NotNil()

	_, err = embedding.New(&mockLLMClient{}, embedding.WithDimension(0))
	gt.Value(t, err).NotNil()
}
