package trace_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/trace"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
)

type recordingTracer struct {
	mu     sync.Mutex
	events []model.TraceEvent
}

func (r *recordingTracer) Record(_ context.Context, ev model.TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestMulti(t *testing.T) {
	a := &recordingTracer{}
	b := &recordingTracer{}
	tracer := trace.Multi(a, nil, b)

	tracer.Record(context.Background(), model.NewTraceEvent("extract", nil, nil))

	gt.Array(t, a.events).Length(1)
	gt.Array(t, b.events).Length(1)
	gt.Value(t, b.events[0].OperationName).Equal("extract")
}

func TestMulti_Empty(t *testing.T) {
	// must not panic
	trace.Multi().Record(context.Background(), model.NewTraceEvent("noop", nil, nil))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.With(context.Background(), logger)

	tracer := trace.NewLogger()
	tracer.Record(ctx, model.NewTraceEvent("embed", errors.New("boom"), map[string]any{"url": "https://example.com"}))

	gt.String(t, buf.String()).Contains("operation=embed")
	gt.String(t, buf.String()).Contains("status=error")
	gt.String(t, buf.String()).Contains("level=WARN")
}

func TestSentry(t *testing.T) {
	var (
		mu          sync.Mutex
		breadcrumbs []*sentry.Breadcrumb
		events      []*sentry.Event
	)

	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeBreadcrumb: func(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			mu.Lock()
			defer mu.Unlock()
			breadcrumbs = append(breadcrumbs, b)
			return b
		},
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, ev)
			return nil
		},
	})
	gt.NoError(t, err).Required()
	hub := sentry.NewHub(client, sentry.NewScope())

	tracer := trace.NewSentry(hub)
	ctx := context.Background()

	t.Run("success adds breadcrumb only", func(t *testing.T) {
		tracer.Record(ctx, model.NewTraceEvent("extract", nil, map[string]any{"url": "https://example.com/a"}))

		mu.Lock()
		defer mu.Unlock()
		gt.Array(t, breadcrumbs).Length(1)
		gt.Value(t, breadcrumbs[0].Message).Equal("extract")
		gt.Value(t, breadcrumbs[0].Level).Equal(sentry.LevelInfo)
		gt.Array(t, events).Length(0)
	})

	t.Run("error captures exception", func(t *testing.T) {
		tracer.Record(ctx, model.NewTraceEvent("store", errors.New("unavailable"), nil))

		mu.Lock()
		defer mu.Unlock()
		gt.Array(t, breadcrumbs).Length(2)
		gt.Value(t, breadcrumbs[1].Level).Equal(sentry.LevelError)
		gt.Array(t, events).Length(1)
		gt.Value(t, events[0].Tags["operation"]).Equal("store")
	})
}

func TestIsolate(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, ev)
			return nil
		},
	})
	gt.NoError(t, err).Required()
	base := sentry.SetHubOnContext(context.Background(), sentry.NewHub(client, sentry.NewScope()))

	ctxA := trace.Isolate(base)
	ctxB := trace.Isolate(base)
	gt.Value(t, sentry.GetHubFromContext(ctxA) != sentry.GetHubFromContext(ctxB)).Equal(true)
	gt.Value(t, sentry.GetHubFromContext(ctxA).Client() == client).Equal(true)

	tracer := trace.NewSentry(nil)
	tracer.Record(ctxA, model.NewTraceEvent("extract", nil, map[string]any{"url": "https://example.com/a"}))
	tracer.Record(ctxB, model.NewTraceEvent("store", errors.New("unavailable"), nil))

	mu.Lock()
	defer mu.Unlock()
	gt.Array(t, events).Length(1).Required()
	for _, b := range events[0].Breadcrumbs {
		gt.Value(t, b.Message).NotEqual("extract")
	}
	gt.Array(t, events[0].Breadcrumbs).Length(1)
	gt.Value(t, events[0].Breadcrumbs[0].Message).Equal("store")
}

func TestIsolate_WithoutHub(t *testing.T) {
	ctx := trace.Isolate(context.Background())
	hub := sentry.GetHubFromContext(ctx)
	gt.Value(t, hub != nil).Equal(true)
	gt.Value(t, hub != sentry.CurrentHub()).Equal(true)
}
