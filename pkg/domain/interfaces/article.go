package interfaces

import (
	"context"

	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

// ArticleRepository is the vector store gateway for articles
type ArticleRepository interface {
	// Upsert stores the article keyed by its URL, overwriting any existing record
	Upsert(ctx context.Context, article *model.Article) error

	// Get retrieves an article by URL
	Get(ctx context.Context, url string) (*model.Article, error)

	// FindNearest performs vector similarity search using cosine distance.
	// Returns up to limit matches ordered by descending similarity. An empty
	// index yields an empty slice, not an error.
	FindNearest(ctx context.Context, embedding []float32, limit int) ([]*model.SourceMatch, error)
}
