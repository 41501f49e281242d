package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultEmbeddingDimension matches OpenAI text-embedding-3-small
const DefaultEmbeddingDimension = 1536

// UntitledArticle is used when no title can be extracted from a page
const UntitledArticle = "Untitled Article"

// Article is one ingested document. URL is the unique key in the vector store.
type Article struct {
	Title   string
	Content string
	URL     string
	// Date is the ingestion timestamp in RFC 3339 (UTC)
	Date      string
	Embedding []float32
}

// EmbeddingText returns the text that represents the article in the vector space
func (a *Article) EmbeddingText() string {
	return a.Title + "\n" + a.Content
}

// Validate checks the article can be stored
func (a *Article) Validate() error {
	if err := ValidateArticleURL(a.URL); err != nil {
		return err
	}
	if len(a.Embedding) == 0 {
		return goerr.New("article embedding is empty", goerr.V("url", a.URL))
	}
	return nil
}

// NewArticleDate formats t as the stored date value
func NewArticleDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ValidateArticleURL accepts absolute http(s) URLs only
func ValidateArticleURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return goerr.New("article URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return goerr.Wrap(err, "invalid article URL", goerr.V("url", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return goerr.New("article URL must be http or https", goerr.V("url", raw))
	}
	if u.Host == "" {
		return goerr.New("article URL has no host", goerr.V("url", raw))
	}
	return nil
}

// SourceMatch is a retrieval result: article metadata without the vector.
// Score is the store-assigned similarity (higher is more similar).
type SourceMatch struct {
	Title   string
	Content string
	URL     string
	Date    string
	Score   float64
}

// NewSourceMatch projects an article into a retrieval result
func NewSourceMatch(a *Article) *SourceMatch {
	return &SourceMatch{
		Title:   a.Title,
		Content: a.Content,
		URL:     a.URL,
		Date:    a.Date,
	}
}

// QueryResult is the answer to a natural-language question.
// Sources keep retrieval rank order, most relevant first.
type QueryResult struct {
	Answer  string
	Sources []*SourceMatch
}

// IngestionID identifies one run of the ingestion pipeline in logs and traces
type IngestionID string

// NewIngestionID generates a time-ordered UUID v7 IngestionID
func NewIngestionID() IngestionID {
	return IngestionID(uuid.Must(uuid.NewV7()).String())
}

// IngestState is a state of the ingestion pipeline
type IngestState string

const (
	IngestStateReceived   IngestState = "received"
	IngestStateExtracted  IngestState = "extracted"
	IngestStateNormalized IngestState = "normalized"
	IngestStateEmbedded   IngestState = "embedded"
	IngestStateStored     IngestState = "stored"
	IngestStateDone       IngestState = "done"
	IngestStateErrored    IngestState = "errored"
)
