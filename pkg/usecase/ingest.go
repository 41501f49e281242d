package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/embedding"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
	"github.com/secmon-lab/newsagent/pkg/service/trace"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
)

// IngestUseCase turns an article URL into a stored, embedded article
type IngestUseCase struct {
	repo       interfaces.Repository
	crawler    crawler.Service
	normalizer normalizer.Service
	embedding  embedding.Service
	tracer     trace.Tracer
	timeouts   Timeouts
	now        func() time.Time
}

// ingestion tracks one pipeline run
type ingestion struct {
	id     model.IngestionID
	url    string
	state  model.IngestState
	logger *slog.Logger
}

func (x *ingestion) transition(state model.IngestState, attrs ...any) {
	x.state = state
	x.logger.Info("ingestion state changed", append([]any{slog.String("state", string(state))}, attrs...)...)
}

func (x *ingestion) fail(err error) error {
	x.state = model.IngestStateErrored
	x.logger.Error("ingestion failed",
		slog.String("state", string(x.state)),
		slog.Any("error", err),
	)
	return err
}

// Ingest runs Received -> Extracted -> Normalized -> Embedded -> Stored -> Done.
// Fetch, embedding and store failures end the run in Errored without retry.
// A normalization failure falls back to the raw extraction.
func (uc *IngestUseCase) Ingest(ctx context.Context, articleURL string) (*model.Article, error) {
	ctx = trace.Isolate(ctx)
	run := &ingestion{
		id:  model.NewIngestionID(),
		url: articleURL,
	}
	run.logger = logging.From(ctx).With(
		slog.String(IngestionIDKey, string(run.id)),
		slog.String(URLKey, articleURL),
	)
	ctx = logging.With(ctx, run.logger)
	run.transition(model.IngestStateReceived)

	if err := model.ValidateArticleURL(articleURL); err != nil {
		err = goerr.Wrap(classify(model.ErrFetch, err), "invalid article URL",
			goerr.V(URLKey, articleURL), goerr.V(IngestionIDKey, run.id))
		uc.record(ctx, run, "extract", err, nil)
		return nil, run.fail(err)
	}

	// Extract
	extraction, err := uc.extract(ctx, articleURL)
	uc.record(ctx, run, "extract", err, nil)
	if err != nil {
		return nil, run.fail(goerr.Wrap(err, "failed to extract article",
			goerr.V(URLKey, articleURL), goerr.V(IngestionIDKey, run.id)))
	}
	run.transition(model.IngestStateExtracted, slog.Int("content_length", len(extraction.Content)))

	// Normalize, falling back to the raw extraction
	title, content := uc.normalize(ctx, run, extraction)
	run.transition(model.IngestStateNormalized)

	article := &model.Article{
		Title:   title,
		Content: content,
		URL:     articleURL,
	}

	// Embed
	vector, err := uc.embed(ctx, article.EmbeddingText())
	uc.record(ctx, run, "embed", err, nil)
	if err != nil {
		return nil, run.fail(goerr.Wrap(err, "failed to embed article",
			goerr.V(URLKey, articleURL), goerr.V(IngestionIDKey, run.id)))
	}
	article.Embedding = vector
	run.transition(model.IngestStateEmbedded, slog.Int("dimension", len(vector)))

	// Store
	article.Date = model.NewArticleDate(uc.now())
	err = uc.store(ctx, article)
	uc.record(ctx, run, "store", err, nil)
	if err != nil {
		return nil, run.fail(goerr.Wrap(err, "failed to store article",
			goerr.V(URLKey, articleURL), goerr.V(IngestionIDKey, run.id)))
	}
	run.transition(model.IngestStateStored)

	run.transition(model.IngestStateDone, slog.String("title", article.Title))
	uc.record(ctx, run, "ingest", nil, map[string]any{"title": article.Title})
	return article, nil
}

// HandleMessage adapts Ingest to a queue consumer handler
func (uc *IngestUseCase) HandleMessage(ctx context.Context, msg *model.IngestMessage) error {
	_, err := uc.Ingest(ctx, msg.URL)
	return err
}

func (uc *IngestUseCase) extract(ctx context.Context, articleURL string) (*crawler.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Fetch)
	defer cancel()

	extraction, err := uc.crawler.Extract(ctx, articleURL)
	if err != nil {
		return nil, classify(model.ErrFetch, err)
	}
	return extraction, nil
}

func (uc *IngestUseCase) normalize(ctx context.Context, run *ingestion, raw *crawler.Extraction) (string, string) {
	if uc.normalizer == nil {
		return raw.Title, raw.Content
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Normalize)
	defer cancel()

	normalized, err := uc.normalizer.Normalize(ctx, raw.Title, raw.Content)
	if err != nil {
		run.logger.Warn("normalization failed, using raw extraction", slog.Any("error", err))
		uc.record(ctx, run, "normalize", err, map[string]any{"fallback": true})
		return raw.Title, raw.Content
	}
	uc.record(ctx, run, "normalize", nil, map[string]any{"fallback": false})

	title := normalized.Title
	if title == "" {
		title = raw.Title
	}
	return title, normalized.Content
}

func (uc *IngestUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Embed)
	defer cancel()

	vector, err := uc.embedding.Embed(ctx, text)
	if err != nil {
		return nil, classify(model.ErrEmbedding, err)
	}
	return vector, nil
}

func (uc *IngestUseCase) store(ctx context.Context, article *model.Article) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Store)
	defer cancel()

	if err := uc.repo.Article().Upsert(ctx, article); err != nil {
		return classify(model.ErrStore, err)
	}
	return nil
}

func (uc *IngestUseCase) record(ctx context.Context, run *ingestion, operation string, err error, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata[IngestionIDKey] = string(run.id)
	metadata[URLKey] = run.url
	metadata["state"] = string(run.state)
	uc.tracer.Record(ctx, model.NewTraceEvent(operation, err, metadata))
}
