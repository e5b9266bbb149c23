// Package grammar is the closed vocabulary of the workflow language: which
// words open keyword blocks in which context, which sections a block accepts
// and how many values each section takes.
//
// Lookup is a plain table lookup. Whether a word is actually used as a
// keyword (and not as an ordinary identifier) is decided by the classifier
// from its position at the start of a statement.
package grammar
