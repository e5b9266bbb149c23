// Package block holds the classification tree: an ordered list of blocks,
// each either opaque host-language code, a workflow keyword block or a
// conditional wrapper hosting further blocks.
//
// The tree owns its children; there are no back references and no tokens
// are retained, only the text the formatter needs.
package block

import (
	"strings"

	"snakefmt/internal/grammar"
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

// Block is the closed set of tree nodes: *Code, *Keyword, *Conditional.
type Block interface {
	Span() source.Span
	// Blank is the number of blank lines that preceded the block in the input.
	Blank() int
	isBlock()
}

// Root is the classified document.
type Root struct {
	Blocks []Block
	Loc    source.Span
}

func (r *Root) Span() source.Span { return r.Loc }

// Code is a contiguous run of host-language statements, kept verbatim.
type Code struct {
	// Lines are the physical source lines, indentation included.
	Lines []string
	// InString[i] is set when Lines[i] begins inside a multi-line string literal.
	InString    []bool
	Indent      int // ширина отступа первой инструкции в байтах
	Depth       int
	BlankBefore int
	StartLine   uint32
	EndLine     uint32
	Loc         source.Span
}

// Keyword is a workflow keyword block (rule, checkpoint, module, use, onstart,
// or a file-level directive holding a single section).
type Keyword struct {
	Keyword       string
	Kind          grammar.Kind
	Context       grammar.Context // набор секций тела
	Name          string
	// Header is the whitespace-normalised text after "use" ("rule a from m as b"), without a trailing "with".
	Header        string
	// With is set for "use ... with:" headers, which open a list of sections.
	With          bool
	HeaderComment string
	Comments      []string // строки комментариев прямо над заголовком
	Sections      []*Section
	Body          []Block // тело onstart/onsuccess/onerror
	Trailing      []string
	Depth         int
	BlankBefore   int
	Loc           source.Span
}

// Conditional is a compound host statement (if, for, with, try, ...) whose
// body contains at least one keyword block, or which continues such a chain.
type Conditional struct {
	Keyword string
	// Header is the raw header text from the keyword up to and including the colon.
	Header        string
	HeaderComment string
	Comments      []string
	Body          []Block
	Depth         int
	BlankBefore   int
	Loc           source.Span
}

// Section is one named parameter section of a keyword block.
type Section struct {
	Keyword       string
	Arity         grammar.Arity
	Values        []*Value
	Comments      []string // строки комментариев над секцией
	HeaderComment string   // комментарий после "kw:" когда значения ниже
	Trailing      []string
	Body          []Block // тело run:
	Loc           source.Span
}

// Value is one comma-separated entry of a section.
type Value struct {
	Key      string // пусто для позиционного значения
	Atoms    []Atom
	Leading  []string // строки комментариев над значением
	Comments []string // комментарии в строке значения и внутри его скобок
	Loc      source.Span
}

// Atom is the text of one token of a value expression.
type Atom struct {
	Kind token.Kind
	Text string
}

func (c *Code) Span() source.Span        { return c.Loc }
func (k *Keyword) Span() source.Span     { return k.Loc }
func (c *Conditional) Span() source.Span { return c.Loc }
func (c *Code) Blank() int               { return c.BlankBefore }
func (k *Keyword) Blank() int            { return k.BlankBefore }
func (c *Conditional) Blank() int        { return c.BlankBefore }
func (*Code) isBlock()                   {}
func (*Keyword) isBlock()                {}
func (*Conditional) isBlock()            {}

// Text returns the verbatim source of the run.
func (c *Code) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Multiline reports whether the value contains a literal spanning lines.
func (v *Value) Multiline() bool {
	for _, a := range v.Atoms {
		if strings.Contains(a.Text, "\n") {
			return true
		}
	}
	return false
}

// HasComments reports whether any comment is attached to the value.
func (v *Value) HasComments() bool {
	return len(v.Leading) > 0 || len(v.Comments) > 0
}

// Children returns the nested blocks of b.
func Children(b Block) []Block {
	switch b := b.(type) {
	case *Keyword:
		out := append([]Block(nil), b.Body...)
		for _, s := range b.Sections {
			out = append(out, s.Body...)
		}
		return out
	case *Conditional:
		return b.Body
	}
	return nil
}

// Walk visits blocks depth-first in document order until fn returns false.
func Walk(blocks []Block, fn func(Block) bool) bool {
	for _, b := range blocks {
		if !fn(b) {
			return false
		}
		if !Walk(Children(b), fn) {
			return false
		}
	}
	return true
}
