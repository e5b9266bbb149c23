// Package token defines lexical token kinds for snakefiles.
// Invariants:
//   - Token.Text is the exact source text of the token (no copies are edited).
//   - Token.Span matches Text exactly (Begin..End); Start/End are 1-based line/col.
//   - Comments are regular tokens (Kind Comment) so the formatter can move them.
//   - Workflow keywords (rule, input, shell, ...) are lexed as Name. Only the
//     classifier decides whether a Name at statement start opens a DSL block.
//   - Indent/Dedent carry an empty Text; Newline/NL carry "\n" or "" at EOF.
package token
