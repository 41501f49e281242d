package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/answer"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/embedding"
	"github.com/secmon-lab/newsagent/pkg/service/trace"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
)

// QueryUseCase answers questions over the stored articles
type QueryUseCase struct {
	repo      interfaces.Repository
	crawler   crawler.Service
	embedding embedding.Service
	answer    answer.Service
	tracer    trace.Tracer
	timeouts  Timeouts
	topK      int
	now       func() time.Time
}

// TopK returns the configured retrieval size
func (uc *QueryUseCase) TopK() int {
	return uc.topK
}

// Query embeds the question, retrieves the nearest articles and asks the
// completion model to answer from them. Any failure is reported as
// model.ErrQueryFailed.
func (uc *QueryUseCase) Query(ctx context.Context, text string) (*model.QueryResult, error) {
	ctx = trace.Isolate(ctx)
	question := strings.TrimSpace(text)
	if question == "" {
		return nil, goerr.Wrap(model.ErrQueryFailed, "query text is empty")
	}

	logger := logging.From(ctx).With(slog.String(QueryKey, question))

	result, err := uc.query(ctx, question)
	metadata := map[string]any{QueryKey: question, "top_k": uc.topK}
	if result != nil {
		metadata["sources"] = len(result.Sources)
	}
	uc.tracer.Record(ctx, model.NewTraceEvent("query", err, metadata))

	if err != nil {
		return nil, goerr.Wrap(classify(model.ErrQueryFailed, err), "failed to answer query",
			goerr.V(QueryKey, question))
	}

	logger.Info("query answered", slog.Int("sources", len(result.Sources)))
	return result, nil
}

func (uc *QueryUseCase) query(ctx context.Context, question string) (*model.QueryResult, error) {
	vector, err := uc.embed(ctx, question)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	sources, err := uc.search(ctx, vector)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search articles")
	}

	reply, err := uc.complete(ctx, func(ctx context.Context) (string, error) {
		return uc.answer.Answer(ctx, question, sources)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer", goerr.V("sources", len(sources)))
	}

	return &model.QueryResult{
		Answer:  reply,
		Sources: sources,
	}, nil
}

// SummarizeArticle fetches the article at articleURL without storing it and
// returns a summary with that article as the only source.
func (uc *QueryUseCase) SummarizeArticle(ctx context.Context, articleURL string) (*model.QueryResult, error) {
	ctx = trace.Isolate(ctx)
	result, err := uc.summarize(ctx, articleURL)
	uc.tracer.Record(ctx, model.NewTraceEvent("summarize", err, map[string]any{URLKey: articleURL}))
	if err != nil {
		return nil, goerr.Wrap(classify(model.ErrQueryFailed, err), "failed to summarize article",
			goerr.V(URLKey, articleURL))
	}
	return result, nil
}

func (uc *QueryUseCase) summarize(ctx context.Context, articleURL string) (*model.QueryResult, error) {
	if err := model.ValidateArticleURL(articleURL); err != nil {
		return nil, classify(model.ErrFetch, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Fetch)
	extraction, err := uc.crawler.Extract(fetchCtx, articleURL)
	cancel()
	if err != nil {
		return nil, goerr.Wrap(classify(model.ErrFetch, err), "failed to extract article")
	}

	article := &model.Article{
		Title:   extraction.Title,
		Content: extraction.Content,
		URL:     articleURL,
		Date:    model.NewArticleDate(uc.now()),
	}

	summary, err := uc.complete(ctx, func(ctx context.Context) (string, error) {
		return uc.answer.Summarize(ctx, article)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate summary")
	}

	return &model.QueryResult{
		Answer:  summary,
		Sources: []*model.SourceMatch{model.NewSourceMatch(article)},
	}, nil
}

func (uc *QueryUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Embed)
	defer cancel()

	vector, err := uc.embedding.Embed(ctx, text)
	if err != nil {
		return nil, classify(model.ErrEmbedding, err)
	}
	return vector, nil
}

func (uc *QueryUseCase) search(ctx context.Context, vector []float32) ([]*model.SourceMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Store)
	defer cancel()

	sources, err := uc.repo.Article().FindNearest(ctx, vector, uc.topK)
	if err != nil {
		return nil, classify(model.ErrStore, err)
	}
	if sources == nil {
		sources = []*model.SourceMatch{}
	}
	return sources, nil
}

func (uc *QueryUseCase) complete(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Complete)
	defer cancel()

	reply, err := fn(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return answer.NoAnswer, nil
	}
	return reply, nil
}
