package trace

import "context"

type tracerKey struct{}

// FromContext returns the context's Tracer, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; a nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext is the innermost open span of a context. Contract is the ID
// of the contract being checked, inherited by every nested span and point so
// file-level events can be attributed without threading the ID through
// checkers.
type SpanContext struct {
	SpanID   uint64
	GID      uint64
	Contract string
}

type spanKey struct{}

// CurrentSpan returns the context's span, or the zero SpanContext.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanKey{}).(SpanContext)
	return sc
}

// ContractOf returns the contract ID the context is checking, if any.
func ContractOf(ctx context.Context) string {
	return CurrentSpan(ctx).Contract
}

func withSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// child derives the span context of a span opened under parent.
func (parent SpanContext) child(span *Span, scope Scope, name string) SpanContext {
	sc := SpanContext{SpanID: span.ID(), GID: span.gid, Contract: parent.Contract}
	if scope == ScopeContract {
		sc.Contract = name
	}
	return sc
}
