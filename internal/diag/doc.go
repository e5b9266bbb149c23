// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Every phase of the formatter (lexer, classifier, code engine) fails with a
// typed error that also implements Diagnoser, so the CLI can render the
// failure with a stable code, the precise source location and the offending
// line. Diagnostics are data only: rendering lives in internal/diagfmt.
//
// Codes are grouped by phase:
//
//   - LEX1xxx – malformed token-level syntax (unterminated string/bracket).
//   - SYN2xxx – malformed workflow structure (missing colon, bad indentation).
//   - FMT3xxx – the external code formatter rejected a delegated segment.
//   - IO4xxx  – reading or writing files.
//
// A Bag collects diagnostics when a caller wants more than the first failure
// (the tokenize debug command does); the formatting pipeline itself stops at
// the first error and never emits partial output.
package diag
