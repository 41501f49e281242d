package memory

import (
	"context"

	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-process repository for development and tests
type Memory struct {
	article *articleRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		article: newArticleRepository(),
	}
}

func (m *Memory) Article() interfaces.ArticleRepository {
	return m.article
}

func (m *Memory) Verify(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
