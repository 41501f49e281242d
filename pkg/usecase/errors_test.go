package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/usecase"
)

func TestClassify(t *testing.T) {
	cause := goerr.New("connection reset", goerr.V(usecase.URLKey, "https://news.example.com/a"))

	t.Run("adds kind and keeps cause", func(t *testing.T) {
		err := usecase.Classify(model.ErrEmbedding, cause)
		gt.Bool(t, errors.Is(err, model.ErrEmbedding)).True()
		gt.Bool(t, errors.Is(err, cause)).True()
		gt.Bool(t, errors.Is(err, model.ErrStore)).False()
	})

	t.Run("does not wrap the same kind twice", func(t *testing.T) {
		once := usecase.Classify(model.ErrFetch, cause)
		twice := usecase.Classify(model.ErrFetch, once)
		gt.Value(t, twice).Equal(once)
	})

	t.Run("stage errors become query failures", func(t *testing.T) {
		err := usecase.Classify(model.ErrQueryFailed, usecase.Classify(model.ErrStore, cause))
		gt.Bool(t, errors.Is(err, model.ErrQueryFailed)).True()
		gt.Bool(t, errors.Is(err, model.ErrStore)).True()
	})
}
