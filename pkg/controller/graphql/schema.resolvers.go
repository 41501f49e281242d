package graphql

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.
// Code generated by github.com/99designs/gqlgen version v0.17.85

import (
	"context"

	graphql1 "github.com/secmon-lab/newsagent/pkg/domain/model/graphql"
	"github.com/secmon-lab/newsagent/pkg/utils/errutil"
)

// QueryNews is the resolver for the queryNews field.
func (r *queryResolver) QueryNews(ctx context.Context, query string) (*graphql1.QueryResponse, error) {
	result, err := r.uc.Query.Query(ctx, query)
	if err != nil {
		return nil, errutil.Handle(ctx, err, "failed to query news")
	}
	return toGraphQLQueryResponse(result), nil
}

// SummarizeArticle is the resolver for the summarizeArticle field.
func (r *queryResolver) SummarizeArticle(ctx context.Context, url string) (*graphql1.QueryResponse, error) {
	result, err := r.uc.Query.SummarizeArticle(ctx, url)
	if err != nil {
		return nil, errutil.Handle(ctx, err, "failed to summarize article")
	}
	return toGraphQLQueryResponse(result), nil
}

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

type queryResolver struct{ *Resolver }
