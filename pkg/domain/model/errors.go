package model

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Stage errors are wrapped with goerr and
// matched with errors.Is.
var (
	// ErrFetch is a network, timeout or non-2xx failure while fetching an article
	ErrFetch = errors.New("failed to fetch article")
	// ErrMalformedModelOutput is a normalization reply that cannot be parsed
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrEmbedding is an embedding provider failure
	ErrEmbedding = errors.New("failed to generate embedding")
	// ErrStore is a vector store upsert or query failure
	ErrStore = errors.New("vector store operation failed")
	// ErrQueryFailed is any failure of the query pipeline
	ErrQueryFailed = errors.New("query failed")
)

// Classify marks err with a taxonomy kind. errors.Is matches both kind and
// the original cause.
func Classify(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
