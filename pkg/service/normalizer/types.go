package normalizer

import "context"

// Service cleans and restructures raw extracted article text with a language model
type Service interface {
	// Normalize returns a cleaned {title, content} pair. A reply that cannot be
	// parsed is model.ErrMalformedModelOutput; callers fall back to the raw text.
	Normalize(ctx context.Context, rawTitle, rawContent string) (*Normalized, error)
}

// Normalized is the cleaned article text
type Normalized struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
