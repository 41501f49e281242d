package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

func TestArticle_Validate(t *testing.T) {
	t.Run("valid article", func(t *testing.T) {
		a := &model.Article{URL: "https://example.com/a", Embedding: []float32{0.1}}
		gt.NoError(t, a.Validate())
	})

	t.Run("missing embedding", func(t *testing.T) {
		a := &model.Article{URL: "https://example.com/a"}
		gt.Error(t, a.Validate())
	})

	t.Run("relative URL", func(t *testing.T) {
		a := &model.Article{URL: "/news/a", Embedding: []float32{0.1}}
		gt.Error(t, a.Validate())
	})

	t.Run("empty URL", func(t *testing.T) {
		a := &model.Article{Embedding: []float32{0.1}}
		gt.Error(t, a.Validate())
	})
}

func TestArticle_EmbeddingText(t *testing.T) {
	a := &model.Article{Title: "Foo", Content: "Bar baz"}
	gt.Value(t, a.EmbeddingText()).Equal("Foo\nBar baz")
}

func TestNewArticleDate(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	gt.Value(t, model.NewArticleDate(ts)).Equal("2024-01-02T03:04:05Z")
}

func TestNewSourceMatch(t *testing.T) {
	a := &model.Article{
		Title:     "Foo",
		Content:   "Bar baz",
		URL:       "https://example.com/a",
		Date:      "2024-01-02T03:04:05Z",
		Embedding: []float32{1, 2, 3},
	}
	m := model.NewSourceMatch(a)
	gt.Value(t, m.Title).Equal("Foo")
	gt.Value(t, m.Content).Equal("Bar baz")
	gt.Value(t, m.URL).Equal("https://example.com/a")
	gt.Value(t, m.Date).Equal("2024-01-02T03:04:05Z")
}

func TestNewTraceEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ev := model.NewTraceEvent("ingest.extract", nil, nil)
		gt.Value(t, ev.Status).Equal(model.TraceStatusSuccess)
		gt.Value(t, len(ev.Metadata)).Equal(0)
	})

	t.Run("error", func(t *testing.T) {
		ev := model.NewTraceEvent("ingest.extract", errors.New("boom"), map[string]any{"url": "u"})
		gt.Value(t, ev.Status).Equal(model.TraceStatusError)
		gt.Value(t, ev.Metadata["error"]).Equal("boom")
		gt.Value(t, ev.Metadata["url"]).Equal("u")
	})
}
