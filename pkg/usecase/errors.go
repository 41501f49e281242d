package usecase

import (
	"errors"

	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

// Context keys for error values
const (
	URLKey         = "url"
	IngestionIDKey = "ingestion_id"
	QueryKey       = "query"
)

// classify marks err with kind unless it already carries it
func classify(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return model.Classify(kind, err)
}
