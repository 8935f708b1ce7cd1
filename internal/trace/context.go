package trace

import "context"

type ctxKey struct{}

// FromContext returns the attached Tracer, Nop when there is none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type spanCtxKey struct{}

// CurrentSpan returns the span ID recorded by WithSpan, 0 when absent.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanCtxKey{}).(uint64)
	return id
}

// WithSpan records sp as the parent for spans begun further down.
func WithSpan(ctx context.Context, sp *Span) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sp.ID())
}

// BeginCtx starts a span under the tracer and parent carried by ctx.
func BeginCtx(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sp := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	if sp.ID() == 0 {
		return sp, ctx
	}
	return sp, WithSpan(ctx, sp)
}
