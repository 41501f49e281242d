package graphql

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	// ErrCodeQueryFailed is the extension code of a failed query pipeline
	ErrCodeQueryFailed = "QUERY_FAILED"
	// ErrCodeInternal is the extension code of any other resolver failure
	ErrCodeInternal = "INTERNAL_ERROR"

	internalErrorMessage = "internal server error"
)

// NewServer builds the gqlgen handler for the resolver with error presenter
// and panic handler installed.
func NewServer(resolver *Resolver) *handler.Server {
	srv := handler.NewDefaultServer(NewExecutableSchema(Config{Resolvers: resolver}))
	srv.SetErrorPresenter(presentError)
	srv.SetRecoverFunc(recoverPanic)
	return srv
}

// presentError replaces resolver error details with a generic message.
// Validation and parse errors carry no cause and pass through unchanged.
func presentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)
	if gqlErr.Err == nil {
		return gqlErr
	}

	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]any{}
	}
	if errors.Is(err, model.ErrQueryFailed) {
		gqlErr.Message = model.ErrQueryFailed.Error()
		gqlErr.Extensions["code"] = ErrCodeQueryFailed
	} else {
		gqlErr.Message = internalErrorMessage
		gqlErr.Extensions["code"] = ErrCodeInternal
	}
	return gqlErr
}

func recoverPanic(ctx context.Context, panicValue any) error {
	var panicErr error
	switch e := panicValue.(type) {
	case error:
		panicErr = e
	case string:
		panicErr = goerr.New(e)
	default:
		panicErr = goerr.New("panic occurred", goerr.V("panic", panicValue))
	}

	wrappedErr := goerr.Wrap(panicErr, "GraphQL panic")
	logging.From(ctx).Error("GraphQL panic occurred", "error", wrappedErr)
	return wrappedErr
}
