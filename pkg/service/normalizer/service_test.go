package normalizer_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.generateFn(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.Generate(ctx, input)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return s.Stream(ctx, input)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return c.newSessionFn(ctx, options...)
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func replying(text string, prompts *[]string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if prompts != nil {
						for _, in := range input {
							if txt, ok := in.(gollem.Text); ok {
								*prompts = append(*prompts, string(txt))
							}
						}
					}
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func TestNew_RequiresLLMClient(t *testing.T) {
	_, err := normalizer.New(nil)
	gt.Value(t, err).NotNil()
}

func TestNormalize(t *testing.T) {
	t.Run("parses structured reply", func(t *testing.T) {
		var prompts []string
		svc, err := normalizer.New(replying(`{"title":" Foo ","content":"Bar baz"}`, &prompts))
		gt.NoError(t, err).Required()

		got, err := svc.Normalize(context.Background(), "Foo raw", "Bar baz raw")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Foo")
		gt.Value(t, got.Content).Equal("Bar baz")

		gt.Array(t, prompts).Length(1).Required()
		gt.String(t, prompts[0]).Contains("Title: Foo raw")
		gt.String(t, prompts[0]).Contains("Content: Bar baz raw")
	})

	t.Run("accepts reply wrapped in code fence", func(t *testing.T) {
		svc, err := normalizer.New(replying("```json\n{\"title\":\"T\",\"content\":\"C\"}\n```", nil))
		gt.NoError(t, err).Required()

		got, err := svc.Normalize(context.Background(), "t", "c")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("T")
		gt.Value(t, got.Content).Equal("C")
	})

	t.Run("unparseable reply is malformed output", func(t *testing.T) {
		svc, err := normalizer.New(replying("Sure! Here is the article.", nil))
		gt.NoError(t, err).Required()

		_, err = svc.Normalize(context.Background(), "t", "c")
		gt.Bool(t, errors.Is(err, model.ErrMalformedModelOutput)).True()
	})

	t.Run("reply without content is malformed output", func(t *testing.T) {
		svc, err := normalizer.New(replying(`{"title":"only title"}`, nil))
		gt.NoError(t, err).Required()

		_, err = svc.Normalize(context.Background(), "t", "c")
		gt.Bool(t, errors.Is(err, model.ErrMalformedModelOutput)).True()
	})

	t.Run("response schema requires title and content", func(t *testing.T) {
		var cfg gollem.SessionConfig
		svc, err := normalizer.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				cfg = gollem.NewSessionConfig(options...)
				return &mockLLMSession{
					generateFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{`{"title":"T","content":"C"}`}}, nil
					},
				}, nil
			},
		})
		gt.NoError(t, err).Required()

		_, err = svc.Normalize(context.Background(), "t", "c")
		gt.NoError(t, err).Required()

		gt.Value(t, cfg.ContentType()).Equal(gollem.ContentTypeJSON)
		schema := cfg.ResponseSchema()
		gt.Value(t, schema).NotNil().Required()
		gt.Value(t, schema.Type).Equal(gollem.TypeObject)
		gt.Value(t, schema.Properties["title"]).NotNil().Required()
		gt.Value(t, schema.Properties["content"]).NotNil().Required()
		gt.Bool(t, schema.Properties["title"].Required).True()
		gt.Bool(t, schema.Properties["content"].Required).True()
	})

	t.Run("session failure is returned", func(t *testing.T) {
		svc, err := normalizer.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, errors.New("quota exceeded")
			},
		})
		gt.NoError(t, err).Required()

		_, err = svc.Normalize(context.Background(), "t", "c")
		gt.Value(t, err).NotNil()
	})

	t.Run("truncates long content", func(t *testing.T) {
		var prompts []string
		svc, err := normalizer.New(replying(`{"title":"T","content":"C"}`, &prompts), normalizer.WithMaxInputLength(5))
		gt.NoError(t, err).Required()

		_, err = svc.Normalize(context.Background(), "t", strings.Repeat("x", 100))
		gt.NoError(t, err).Required()
		gt.String(t, prompts[0]).Contains("Content: xxxxx")
		gt.String(t, prompts[0]).NotContains("xxxxxx")
	})
}

func TestNormalize_WithRealOpenAI(t *testing.T) {
	apiKey := os.Getenv("TEST_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_OPENAI_API_KEY not set")
	}

	ctx := context.Background()
	llmClient, err := openai.New(ctx, apiKey)
	gt.NoError(t, err).Required()

	svc, err := normalizer.New(llmClient)
	gt.NoError(t, err).Required()

	got, err := svc.Normalize(ctx, "Local team wins | Share | Tweet",
		"Menu Home Sports. The local team won the championship on Sunday after a 3-1 victory. Subscribe now!")
	gt.NoError(t, err).Required()
	gt.String(t, got.Content).Contains("championship")
}
