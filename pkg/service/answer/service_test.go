package answer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/answer"
)

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

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return c.newSessionFn(ctx, options...)
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func replying(texts []string, prompt *string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if prompt != nil {
						for _, in := range input {
							if txt, ok := in.(gollem.Text); ok {
								*prompt = string(txt)
							}
						}
					}
					return &gollem.Response{Texts: texts}, nil
				},
			}, nil
		},
	}
}

func TestAnswer(t *testing.T) {
	sources := []*model.SourceMatch{
		{Title: "Foo", Content: "Bar baz", URL: "https://example.com/a", Date: "2024-01-01T00:00:00Z", Score: 0.9},
		{Title: "Qux", Content: "Quux", URL: "https://example.com/b", Date: "2024-01-02T00:00:00Z", Score: 0.5},
	}

	t.Run("passes every source to the model", func(t *testing.T) {
		var prompt string
		svc, err := answer.New(replying([]string{"Bar baz [Foo](https://example.com/a)"}, &prompt))
		gt.NoError(t, err).Required()

		got, err := svc.Answer(context.Background(), "what is foo?", sources)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("Bar baz [Foo](https://example.com/a)")

		gt.String(t, prompt).Contains("Question: what is foo?")
		gt.String(t, prompt).Contains("Title: Foo")
		gt.String(t, prompt).Contains("URL: https://example.com/b")
		gt.String(t, prompt).Contains("Date: 2024-01-02T00:00:00Z")
		gt.Bool(t, strings.Index(prompt, "Title: Foo") < strings.Index(prompt, "Title: Qux")).True()
	})

	t.Run("no sources still invokes the model", func(t *testing.T) {
		var prompt string
		svc, err := answer.New(replying([]string{"I do not have information about that."}, &prompt))
		gt.NoError(t, err).Required()

		got, err := svc.Answer(context.Background(), "anything?", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("I do not have information about that.")
		gt.String(t, prompt).Contains("none were found")
	})

	t.Run("empty reply becomes no answer", func(t *testing.T) {
		svc, err := answer.New(replying([]string{"  "}, nil))
		gt.NoError(t, err).Required()

		got, err := svc.Answer(context.Background(), "q", sources)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(answer.NoAnswer)
	})

	t.Run("multiple text parts are joined", func(t *testing.T) {
		svc, err := answer.New(replying([]string{"Hello, ", "world"}, nil))
		gt.NoError(t, err).Required()

		got, err := svc.Answer(context.Background(), "q", sources)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("Hello, world")
	})

	t.Run("model failure is returned", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return nil, errors.New("rate limited")
					},
				}, nil
			},
		}
		svc, err := answer.New(llm)
		gt.NoError(t, err).Required()

		_, err = svc.Answer(context.Background(), "q", sources)
		gt.Error(t, err)
	})
}

func TestSummarize(t *testing.T) {
	var prompt string
	svc, err := answer.New(replying([]string{"A short summary."}, &prompt))
	gt.NoError(t, err).Required()

	got, err := svc.Summarize(context.Background(), &model.Article{
		Title:   "Foo",
		Content: "Bar baz",
		URL:     "https://example.com/a",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("A short summary.")
	gt.String(t, prompt).Contains("Title: Foo")
	gt.String(t, prompt).Contains("Content: Bar baz")
}

func TestNew_RequiresLLMClient(t *testing.T) {
	_, err := answer.New(nil)
	gt.Value(t, err).NotNil()
}
