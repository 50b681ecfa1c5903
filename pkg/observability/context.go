package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	ActorIDKey       = "actor_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
)

// Trace identifies one CLI command or worker job across logs, metrics and
// the metadata of the events it emits.
type Trace struct {
	CorrelationID string
	ActorID       string
	Operation     string
}

type traceKey struct{}

// TraceFromContext returns the trace carried by ctx, or the zero Trace.
func TraceFromContext(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}
	tr, _ := ctx.Value(traceKey{}).(Trace)
	return tr
}

func withTrace(ctx context.Context, edit func(*Trace)) context.Context {
	tr := TraceFromContext(ctx)
	edit(&tr)
	return context.WithValue(ctx, traceKey{}, tr)
}

// WithCorrelationID sets the correlation id, generating one when id is empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return withTrace(ctx, func(tr *Trace) { tr.CorrelationID = id })
}

// WithActorID records the acting user.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return withTrace(ctx, func(tr *Trace) { tr.ActorID = actorID })
}

// WithOperation names what the caller is doing, e.g. "perfboard task claim".
func WithOperation(ctx context.Context, operation string) context.Context {
	return withTrace(ctx, func(tr *Trace) { tr.Operation = operation })
}

func CorrelationIDFromContext(ctx context.Context) string { return TraceFromContext(ctx).CorrelationID }

func ActorIDFromContext(ctx context.Context) string { return TraceFromContext(ctx).ActorID }

func OperationFromContext(ctx context.Context) string { return TraceFromContext(ctx).Operation }

// attrs renders the non-empty fields as log attributes.
func (tr Trace) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if tr.CorrelationID != "" {
		attrs = append(attrs, slog.String(CorrelationIDKey, tr.CorrelationID))
	}
	if tr.ActorID != "" {
		attrs = append(attrs, slog.String(ActorIDKey, tr.ActorID))
	}
	if tr.Operation != "" {
		attrs = append(attrs, slog.String(OperationKey, tr.Operation))
	}
	return attrs
}
