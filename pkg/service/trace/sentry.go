package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

const breadcrumbCategory = "pipeline"

type sentryTracer struct {
	hub *sentry.Hub
}

// NewSentry returns a Tracer that adds a breadcrumb for every event and
// captures an exception for failed operations. A nil hub means the hub bound
// to the context, or the current hub.
func NewSentry(hub *sentry.Hub) Tracer {
	return &sentryTracer{hub: hub}
}

func (x *sentryTracer) hubFor(ctx context.Context) *sentry.Hub {
	if x.hub != nil {
		return x.hub
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func (x *sentryTracer) Record(ctx context.Context, ev model.TraceEvent) {
	hub := x.hubFor(ctx)

	level := sentry.LevelInfo
	if ev.Status == model.TraceStatusError {
		level = sentry.LevelError
	}

	data := make(map[string]interface{}, len(ev.Metadata)+1)
	for k, v := range ev.Metadata {
		data[k] = v
	}
	data["status"] = string(ev.Status)

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  breadcrumbCategory,
		Message:   ev.OperationName,
		Level:     level,
		Data:      data,
		Timestamp: time.Now(),
	}, nil)

	if ev.Status != model.TraceStatusError {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", ev.OperationName)
		scope.SetContext("trace", sentry.Context(data))
		hub.CaptureException(goerr.New(fmt.Sprintf("%s failed", ev.OperationName),
			goerr.V("error", ev.Metadata["error"])))
	})
}

// Isolate binds a clone of the context hub (or the current hub) to ctx so
// breadcrumbs and scope data of one run do not leak into concurrent runs.
func Isolate(ctx context.Context) context.Context {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return sentry.SetHubOnContext(ctx, hub.Clone())
}
