package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/repository/firestore"
	"github.com/secmon-lab/newsagent/pkg/repository/memory"
)

func uniqueURL(path string) string {
	return fmt.Sprintf("https://example.com/%d/%s", time.Now().UnixNano(), path)
}

func newArticle(url, title, content string, embedding []float32) *model.Article {
	return &model.Article{
		Title:     title,
		Content:   content,
		URL:       url,
		Date:      model.NewArticleDate(time.Now()),
		Embedding: embedding,
	}
}

func runArticleRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert then Get round-trips metadata and vector", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		url := uniqueURL("a")
		article := newArticle(url, "Foo", "Bar baz", []float32{0.1, 0.2, 0.3})
		gt.NoError(t, repo.Article().Upsert(ctx, article)).Required()

		got, err := repo.Article().Get(ctx, url)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Foo")
		gt.Value(t, got.Content).Equal("Bar baz")
		gt.Value(t, got.URL).Equal(url)
		gt.Value(t, got.Date).Equal(article.Date)
		gt.Array(t, got.Embedding).Length(3)
		gt.Value(t, got.Embedding[1]).Equal(float32(0.2))
	})

	t.Run("Upsert twice keeps one record with the latest metadata", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		url := uniqueURL("same")
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle(url, "First", "v1", []float32{1, 0, 0}))).Required()
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle(url, "Second", "v2", []float32{1, 0, 0}))).Required()

		got, err := repo.Article().Get(ctx, url)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Second")
		gt.Value(t, got.Content).Equal("v2")

		matches, err := repo.Article().FindNearest(ctx, []float32{1, 0, 0}, 10)
		gt.NoError(t, err).Required()
		count := 0
		for _, m := range matches {
			if m.URL == url {
				count++
			}
		}
		gt.Value(t, count).Equal(1)
	})

	t.Run("Upsert rejects article without embedding", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Article().Upsert(context.Background(), newArticle(uniqueURL("x"), "t", "c", nil))
		gt.Value(t, err).NotNil()
	})

	t.Run("Get returns ErrNotFound for unknown URL", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Article().Get(context.Background(), uniqueURL("missing"))
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("FindNearest orders by descending similarity and honors limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		near := uniqueURL("near")
		mid := uniqueURL("mid")
		far := uniqueURL("far")
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle(far, "Far", "far", []float32{0, 0, 1}))).Required()
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle(near, "Near", "near", []float32{1, 0, 0}))).Required()
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle(mid, "Mid", "mid", []float32{0.7, 0.7, 0}))).Required()

		matches, err := repo.Article().FindNearest(ctx, []float32{1, 0, 0}, 100)
		gt.NoError(t, err).Required()

		var ours []string
		for _, m := range matches {
			if m.URL == near || m.URL == mid || m.URL == far {
				ours = append(ours, m.URL)
			}
		}
		gt.Array(t, ours).Equal([]string{near, mid, far})

		limited, err := repo.Article().FindNearest(ctx, []float32{1, 0, 0}, 2)
		gt.NoError(t, err).Required()
		gt.Number(t, len(limited)).LessOrEqual(2)
		for i := 1; i < len(limited); i++ {
			gt.Bool(t, limited[i-1].Score >= limited[i].Score).True()
		}
	})

	t.Run("FindNearest rejects non-positive limit", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Article().FindNearest(context.Background(), []float32{1, 0, 0}, 0)
		gt.Value(t, err).NotNil()
	})

	t.Run("Verify succeeds", func(t *testing.T) {
		repo := newRepo(t)
		gt.NoError(t, repo.Verify(context.Background()))
	})
}

func TestMemoryArticleRepository(t *testing.T) {
	runArticleRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})

	t.Run("FindNearest on empty store returns empty slice", func(t *testing.T) {
		repo := memory.New()
		matches, err := repo.Article().FindNearest(context.Background(), []float32{1, 0, 0}, 5)
		gt.NoError(t, err).Required()
		gt.Value(t, matches).NotNil()
		gt.Array(t, matches).Length(0)
	})

	t.Run("FindNearest returns fewer than limit when store is small", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()
		gt.NoError(t, repo.Article().Upsert(ctx, newArticle("https://example.com/only", "Only", "one", []float32{1, 0}))).Required()

		matches, err := repo.Article().FindNearest(ctx, []float32{1, 0}, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
	})

	t.Run("stored article without metadata reads back with empty strings", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()
		gt.NoError(t, repo.Article().Upsert(ctx, &model.Article{
			URL:       "https://example.com/bare",
			Embedding: []float32{1, 0},
		})).Required()

		matches, err := repo.Article().FindNearest(ctx, []float32{1, 0}, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1).Required()
		gt.Value(t, matches[0].Title).Equal("")
		gt.Value(t, matches[0].Content).Equal("")
		gt.Value(t, matches[0].Date).Equal("")
		gt.Value(t, matches[0].URL).Equal("https://example.com/bare")
	})

	t.Run("returned articles are copies", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()
		a := newArticle("https://example.com/copy", "T", "C", []float32{1, 0})
		gt.NoError(t, repo.Article().Upsert(ctx, a)).Required()
		a.Embedding[0] = 0

		got, err := repo.Article().Get(ctx, "https://example.com/copy")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Embedding[0]).Equal(float32(1))
	})
}

func newFirestoreArticleRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	// Use standard collection names (no prefix) to utilize the existing vector index.
	// Test data isolation is achieved through unique URLs in test data.
	repo, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestFirestoreArticleRepository(t *testing.T) {
	runArticleRepositoryTest(t, newFirestoreArticleRepository)
}
