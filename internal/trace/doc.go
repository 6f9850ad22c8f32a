// Package trace provides lightweight tracing for nestfix runs.
//
// The driver emits a span per run and per file; engine fallbacks are
// reported as point events. Tracing is off by default and costs nothing
// when disabled.
//
// # Usage
//
//	nestfix fmt --trace=- --trace-level=detail ./site
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures (fallbacks, IO errors)
//   - LevelPhase: run boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: everything including engine calls
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, "file", parentID)
//	defer span.End("")
package trace
