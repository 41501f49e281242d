package usecase_test

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
)

const testDimension = 16

// bagOfWords is a deterministic embedding so related texts land close together
func bagOfWords(text string) []float32 {
	v := make([]float32, testDimension)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, "?.,!")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%testDimension]++
	}
	v[testDimension-1] += 0.01
	return v
}

type mockEmbedding struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)

	mu     sync.Mutex
	inputs []string
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()

	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return bagOfWords(text), nil
}

func (m *mockEmbedding) Dimension() int {
	return testDimension
}

type mockCrawler struct {
	extractFn func(ctx context.Context, url string) (*crawler.Extraction, error)
}

func (m *mockCrawler) Extract(ctx context.Context, url string) (*crawler.Extraction, error) {
	return m.extractFn(ctx, url)
}

// staticCrawler serves fixed pages and fails with ErrFetch for anything else
func staticCrawler(pages map[string]*crawler.Extraction) *mockCrawler {
	return &mockCrawler{
		extractFn: func(ctx context.Context, url string) (*crawler.Extraction, error) {
			page, ok := pages[url]
			if !ok {
				return nil, model.Classify(model.ErrFetch, errors.New("unexpected status code 404"))
			}
			return &crawler.Extraction{Title: page.Title, Content: page.Content}, nil
		},
	}
}

type mockNormalizer struct {
	normalizeFn func(ctx context.Context, rawTitle, rawContent string) (*normalizer.Normalized, error)
}

func (m *mockNormalizer) Normalize(ctx context.Context, rawTitle, rawContent string) (*normalizer.Normalized, error) {
	return m.normalizeFn(ctx, rawTitle, rawContent)
}

type mockAnswer struct {
	answerFn    func(ctx context.Context, question string, sources []*model.SourceMatch) (string, error)
	summarizeFn func(ctx context.Context, article *model.Article) (string, error)

	mu           sync.Mutex
	answerCalls  int
	lastQuestion string
	lastSources  []*model.SourceMatch
}

func (m *mockAnswer) Answer(ctx context.Context, question string, sources []*model.SourceMatch) (string, error) {
	m.mu.Lock()
	m.answerCalls++
	m.lastQuestion = question
	m.lastSources = sources
	m.mu.Unlock()

	if m.answerFn != nil {
		return m.answerFn(ctx, question, sources)
	}
	if len(sources) == 0 {
		return "I do not have information about that.", nil
	}
	return "According to " + sources[0].Title + " (" + sources[0].URL + "): " + sources[0].Content, nil
}

func (m *mockAnswer) Summarize(ctx context.Context, article *model.Article) (string, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, article)
	}
	return "Summary of " + article.Title, nil
}

type recordingTracer struct {
	mu     sync.Mutex
	events []model.TraceEvent
}

func (r *recordingTracer) Record(_ context.Context, ev model.TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingTracer) operations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		ops = append(ops, ev.OperationName)
	}
	return ops
}

func (r *recordingTracer) find(operation string) *model.TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].OperationName == operation {
			return &r.events[i]
		}
	}
	return nil
}

// failingRepository rejects every write and search
type failingRepository struct {
	err error
}

func (r *failingRepository) Article() interfaces.ArticleRepository {
	return &failingArticleRepository{err: r.err}
}

func (r *failingRepository) Verify(ctx context.Context) error {
	return r.err
}

func (r *failingRepository) Close() error {
	return nil
}

type failingArticleRepository struct {
	err error
}

func (r *failingArticleRepository) Upsert(ctx context.Context, article *model.Article) error {
	return r.err
}

func (r *failingArticleRepository) Get(ctx context.Context, url string) (*model.Article, error) {
	return nil, r.err
}

func (r *failingArticleRepository) FindNearest(ctx context.Context, embedding []float32, limit int) ([]*model.SourceMatch, error) {
	return nil, r.err
}
