package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

type articleRepository struct {
	mu       sync.RWMutex
	articles map[string]*model.Article
}

func newArticleRepository() *articleRepository {
	return &articleRepository{
		articles: make(map[string]*model.Article),
	}
}

func copyArticle(a *model.Article) *model.Article {
	copied := *a
	if a.Embedding != nil {
		copied.Embedding = make([]float32, len(a.Embedding))
		copy(copied.Embedding, a.Embedding)
	}
	return &copied
}

func (r *articleRepository) Upsert(ctx context.Context, article *model.Article) error {
	if err := article.Validate(); err != nil {
		return goerr.Wrap(err, "invalid article")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.articles[article.URL] = copyArticle(article)
	return nil
}

func (r *articleRepository) Get(ctx context.Context, url string) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, exists := r.articles[url]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "article not found", goerr.V("url", url))
	}

	return copyArticle(article), nil
}

func (r *articleRepository) FindNearest(ctx context.Context, embedding []float32, limit int) ([]*model.SourceMatch, error) {
	if limit <= 0 {
		return nil, goerr.New("limit must be positive", goerr.V("limit", limit))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*model.SourceMatch, 0, len(r.articles))
	for _, a := range r.articles {
		if len(a.Embedding) == 0 {
			continue
		}
		match := model.NewSourceMatch(a)
		match.Score = cosineSimilarity(embedding, a.Embedding)
		candidates = append(candidates, match)
	}

	// URL as tie breaker keeps results deterministic for equal scores
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].URL < candidates[j].URL
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	return candidates[:limit], nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
