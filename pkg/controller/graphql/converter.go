package graphql

import (
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	graphql1 "github.com/secmon-lab/newsagent/pkg/domain/model/graphql"
)

// toGraphQLArticle converts a retrieval match to a GraphQL Article
func toGraphQLArticle(src *model.SourceMatch) *graphql1.Article {
	if src == nil {
		return &graphql1.Article{}
	}
	return &graphql1.Article{
		Title:   src.Title,
		Content: src.Content,
		URL:     src.URL,
		Date:    src.Date,
	}
}

// toGraphQLQueryResponse keeps sources in retrieval order and never returns a nil list
func toGraphQLQueryResponse(result *model.QueryResult) *graphql1.QueryResponse {
	sources := make([]*graphql1.Article, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, toGraphQLArticle(src))
	}
	return &graphql1.QueryResponse{
		Answer:  result.Answer,
		Sources: sources,
	}
}
