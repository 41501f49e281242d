package usecase

import (
	"time"

	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/service/answer"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/embedding"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
	"github.com/secmon-lab/newsagent/pkg/service/trace"
)

const (
	// DefaultTopK is the number of articles retrieved per query
	DefaultTopK = 5
	// MaxTopK bounds the retrieval size so the prompt stays within the model context
	MaxTopK = 20
)

// Timeouts bounds every external call of the pipelines
type Timeouts struct {
	Fetch     time.Duration
	Normalize time.Duration
	Embed     time.Duration
	Store     time.Duration
	Complete  time.Duration
}

// DefaultTimeouts returns the stage timeouts used when none are configured
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Fetch:     30 * time.Second,
		Normalize: 60 * time.Second,
		Embed:     30 * time.Second,
		Store:     30 * time.Second,
		Complete:  60 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Fetch <= 0 {
		t.Fetch = d.Fetch
	}
	if t.Normalize <= 0 {
		t.Normalize = d.Normalize
	}
	if t.Embed <= 0 {
		t.Embed = d.Embed
	}
	if t.Store <= 0 {
		t.Store = d.Store
	}
	if t.Complete <= 0 {
		t.Complete = d.Complete
	}
	return t
}

type UseCases struct {
	repo       interfaces.Repository
	crawler    crawler.Service
	normalizer normalizer.Service
	embedding  embedding.Service
	answer     answer.Service
	tracer     trace.Tracer
	timeouts   Timeouts
	topK       int
	now        func() time.Time

	Ingest *IngestUseCase
	Query  *QueryUseCase
}

type Option func(*UseCases)

// WithNormalizer enables LLM normalization of extracted articles. Without it
// the raw extraction is stored.
func WithNormalizer(svc normalizer.Service) Option {
	return func(uc *UseCases) {
		uc.normalizer = svc
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(uc *UseCases) {
		uc.tracer = tracer
	}
}

func WithTimeouts(timeouts Timeouts) Option {
	return func(uc *UseCases) {
		uc.timeouts = timeouts
	}
}

// WithTopK sets the retrieval size. Values outside 1..MaxTopK are clamped.
func WithTopK(topK int) Option {
	return func(uc *UseCases) {
		uc.topK = topK
	}
}

// WithClock replaces the time source used for article dates
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, crawlerSvc crawler.Service, embeddingSvc embedding.Service, answerSvc answer.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		crawler:   crawlerSvc,
		embedding: embeddingSvc,
		answer:    answerSvc,
		tracer:    trace.NewNop(),
		timeouts:  DefaultTimeouts(),
		topK:      DefaultTopK,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.timeouts = uc.timeouts.withDefaults()
	uc.topK = clampTopK(uc.topK)

	uc.Ingest = &IngestUseCase{
		repo:       uc.repo,
		crawler:    uc.crawler,
		normalizer: uc.normalizer,
		embedding:  uc.embedding,
		tracer:     uc.tracer,
		timeouts:   uc.timeouts,
		now:        uc.now,
	}
	uc.Query = &QueryUseCase{
		repo:      uc.repo,
		crawler:   uc.crawler,
		embedding: uc.embedding,
		answer:    uc.answer,
		tracer:    uc.tracer,
		timeouts:  uc.timeouts,
		topK:      uc.topK,
		now:       uc.now,
	}

	return uc
}

func clampTopK(topK int) int {
	switch {
	case topK <= 0:
		return DefaultTopK
	case topK > MaxTopK:
		return MaxTopK
	default:
		return topK
	}
}
