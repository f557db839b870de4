// Package trace is the logging layer of keystone: structured span and point
// events emitted by the CLI, the orchestrator and the checkers.
//
// Enable it from the command line:
//
//	keystone check --trace=- --trace-level=detail .
//
// Implementations: Nop (disabled), StreamTracer (writes each event as it
// happens, text or NDJSON), RingTracer (keeps the last N events for a dump
// after a failed run) and MultiTracer (fan-out).
//
// Levels gate scopes:
//
//   - LevelPhase: driver runs and passes (generate, check)
//   - LevelDetail: + one span per contract
//   - LevelDebug: + per-file events (extraction, cache misses)
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "check", 0)
//	defer span.End("")
package trace
