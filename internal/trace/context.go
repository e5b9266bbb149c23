package trace

import "context"

// state is what a context carries for tracing: the tracer and the span that
// new spans attach to.
type state struct {
	tracer Tracer
	span   SpanContext
}

type stateKey struct{}

// SpanContext identifies the current span for propagation.
type SpanContext struct {
	SpanID uint64
}

func load(ctx context.Context) state {
	if ctx == nil {
		return state{tracer: Nop}
	}
	st, ok := ctx.Value(stateKey{}).(state)
	if !ok || st.tracer == nil {
		st.tracer = Nop
	}
	return st
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return load(ctx).tracer
}

// WithTracer attaches t to ctx; the current span is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	st := load(ctx)
	st.tracer = t
	return context.WithValue(ctx, stateKey{}, st)
}

// CurrentSpan returns the span new spans in ctx attach to; zero at the root.
func CurrentSpan(ctx context.Context) SpanContext {
	return load(ctx).span
}

// WithSpanContext makes sc the current span of ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	st := load(ctx)
	st.span = sc
	return context.WithValue(ctx, stateKey{}, st)
}

// Start begins a span under the current span of ctx and returns the
// context in which it is current.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	st := load(ctx)
	sp := Begin(st.tracer, scope, name, st.span.SpanID)
	return sp.Context(ctx), sp
}

// Mark emits a point event under the current span of ctx.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	st := load(ctx)
	Point(st.tracer, scope, name, st.span.SpanID, detail)
}
