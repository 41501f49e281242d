package trace

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
)

// Tracer receives pipeline trace events. Implementations must not fail or
// block the pipeline.
type Tracer interface {
	Record(ctx context.Context, ev model.TraceEvent)
}

type nopTracer struct{}

// NewNop returns a Tracer that discards every event
func NewNop() Tracer {
	return nopTracer{}
}

func (nopTracer) Record(context.Context, model.TraceEvent) {}

type logTracer struct{}

// NewLogger returns a Tracer that writes events to the context logger
func NewLogger() Tracer {
	return logTracer{}
}

func (logTracer) Record(ctx context.Context, ev model.TraceEvent) {
	attrs := []any{
		slog.String("operation", ev.OperationName),
		slog.String("status", string(ev.Status)),
		slog.Any("metadata", ev.Metadata),
	}

	logger := logging.From(ctx)
	if ev.Status == model.TraceStatusError {
		logger.Warn("trace", attrs...)
		return
	}
	logger.Debug("trace", attrs...)
}

type multiTracer []Tracer

// Multi fans out every event to all tracers
func Multi(tracers ...Tracer) Tracer {
	var filtered multiTracer
	for _, t := range tracers {
		if t != nil {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return NewNop()
	}
	return filtered
}

func (m multiTracer) Record(ctx context.Context, ev model.TraceEvent) {
	for _, t := range m {
		t.Record(ctx, ev)
	}
}
