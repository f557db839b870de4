// Package diag defines the diagnostic model shared by contract checkers,
// the definition generator and the orchestrator.
//
// Diagnostic is the central record: severity, a stable Code from the
// reserved KS7xxxx range, a short message, the primary source.Ref, optional
// notes and fix descriptors, and a back-reference to the violated Contract.
// Definition errors and the I/O summary warning carry no contract.
//
// Fix is data-only: a name and a human description. Nothing in the engine
// applies fixes.
//
// Producers emit through a Reporter (usually a BagReporter over a private
// Bag) and the orchestrator merges and sorts the bags. Rendering lives in
// internal/diagfmt; FormatShort here is the one-line format used by tests
// and `--format short`.
package diag
