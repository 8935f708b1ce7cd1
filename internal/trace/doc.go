// Package trace records spans for the rusttypes pipeline: fixture loading,
// registry building, checks and rendering.
//
// Enable it from the CLI:
//
//	rusttypes check --trace=- --trace-level=detail fixtures/option.toml
//
// Tracers come in three flavours. Nop costs nothing, StreamTracer writes each
// event as it happens and RingTracer keeps the tail in memory so it can be
// dumped when a command fails. New wires them from a Config.
//
// Spans nest through parent IDs and travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "load", 0)
//	defer sp.End("")
package trace
