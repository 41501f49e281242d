package model

// TraceStatus is the outcome of a traced operation
type TraceStatus string

const (
	TraceStatusSuccess TraceStatus = "success"
	TraceStatusError   TraceStatus = "error"
)

// TraceEvent is a structured, purely observational record of one pipeline operation
type TraceEvent struct {
	OperationName string
	Status        TraceStatus
	Metadata      map[string]any
}

// NewTraceEvent builds an event whose status is derived from err
func NewTraceEvent(operation string, err error, metadata map[string]any) TraceEvent {
	ev := TraceEvent{
		OperationName: operation,
		Status:        TraceStatusSuccess,
		Metadata:      metadata,
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]any{}
	}
	if err != nil {
		ev.Status = TraceStatusError
		ev.Metadata["error"] = err.Error()
	}
	return ev
}
