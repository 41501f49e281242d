package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ArticlesCollection is the collection holding article vectors and metadata
	ArticlesCollection = "articles"
	// EmbeddingField is the vector field indexed for FindNearest
	EmbeddingField = "Embedding"

	distanceResultField = "VectorDistance"
)

// articleDoc is the Firestore document representation of model.Article.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type articleDoc struct {
	Title     string             `firestore:"Title"`
	Content   string             `firestore:"Content"`
	URL       string             `firestore:"URL"`
	Date      string             `firestore:"Date"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
}

func toArticleDoc(a *model.Article) *articleDoc {
	doc := &articleDoc{
		Title:   a.Title,
		Content: a.Content,
		URL:     a.URL,
		Date:    a.Date,
	}
	if len(a.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(a.Embedding)
	}
	return doc
}

// fromArticleDoc leaves absent fields as empty strings
func fromArticleDoc(d *articleDoc) *model.Article {
	a := &model.Article{
		Title:   d.Title,
		Content: d.Content,
		URL:     d.URL,
		Date:    d.Date,
	}
	if len(d.Embedding) > 0 {
		a.Embedding = []float32(d.Embedding)
	}
	return a
}

// articleDocID maps a URL to a valid document ID; URLs contain '/' which
// Firestore reserves as a path separator.
func articleDocID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

type articleRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newArticleRepository(client *firestore.Client) *articleRepository {
	return &articleRepository{
		client: client,
	}
}

func (r *articleRepository) collectionName() string {
	return r.collectionPrefix + ArticlesCollection
}

func (r *articleRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionName())
}

func (r *articleRepository) Upsert(ctx context.Context, article *model.Article) error {
	if err := article.Validate(); err != nil {
		return goerr.Wrap(err, "invalid article")
	}

	docRef := r.collection().Doc(articleDocID(article.URL))
	if _, err := docRef.Set(ctx, toArticleDoc(article)); err != nil {
		return goerr.Wrap(err, "failed to upsert article", goerr.V("url", article.URL))
	}

	return nil
}

func (r *articleRepository) Get(ctx context.Context, url string) (*model.Article, error) {
	doc, err := r.collection().Doc(articleDocID(url)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "article not found", goerr.V("url", url))
		}
		return nil, goerr.Wrap(err, "failed to get article", goerr.V("url", url))
	}

	var d articleDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal article", goerr.V("url", url))
	}

	return fromArticleDoc(&d), nil
}

func (r *articleRepository) FindNearest(ctx context.Context, embedding []float32, limit int) ([]*model.SourceMatch, error) {
	if limit <= 0 {
		return nil, goerr.New("limit must be positive", goerr.V("limit", limit))
	}

	vq := r.collection().FindNearest(EmbeddingField, firestore.Vector32(embedding), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceResultField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.SourceMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			// A collection that never received a write has no vector index yet
			if status.Code(err) == codes.FailedPrecondition && len(matches) == 0 {
				logging.From(ctx).Warn("vector index is not ready, treating as empty",
					"collection", r.collectionName(), "error", err.Error())
				return []*model.SourceMatch{}, nil
			}
			return nil, goerr.Wrap(err, "failed to iterate article vector search results")
		}

		var d articleDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal article from vector search",
				goerr.V("docID", doc.Ref.ID))
		}

		match := model.NewSourceMatch(fromArticleDoc(&d))
		if v, err := doc.DataAt(distanceResultField); err == nil {
			if distance, ok := v.(float64); ok {
				// cosine distance is in [0, 2]
				match.Score = 1 - distance
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}
