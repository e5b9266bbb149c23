// Package trace provides structured tracing for snakefmt runs.
//
// The trace package records pipeline phases (lex, classify, format,
// reassemble), per-file processing and engine calls, so that slow files and
// stuck formatter processes can be found.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	snakefmt --trace=- --trace-level=phase workflow/
//
// # Architecture
//
//   - nop tracer: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr), text or NDJSON
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: The run span and its outcome
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything including engine calls
//
// # Context Propagation
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "classify")
//	defer span.End("")
//
// Spans started from the returned context become children of span.
package trace
