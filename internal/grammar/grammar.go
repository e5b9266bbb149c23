package grammar

import "slices"

// Context selects the keyword table that applies to a statement.
type Context uint8

const (
	// Global is the file level and the body of conditional wrappers.
	Global Context = iota
	// Rule is the body of rule, checkpoint and "use rule ... with:".
	Rule
	// Subworkflow is the body of a subworkflow declaration.
	Subworkflow
	// Module is the body of a module declaration.
	Module
)

func (c Context) String() string {
	switch c {
	case Global:
		return "global"
	case Rule:
		return "rule"
	case Subworkflow:
		return "subworkflow"
	case Module:
		return "module"
	}
	return "context(?)"
}

// Kind says what a keyword opens.
type Kind uint8

const (
	KindNone Kind = iota
	// KindNamed: "<kw> [name]:" followed by an indented list of sections.
	KindNamed
	// KindUse: "use rule ... [with:]", sections only after "with:".
	KindUse
	// KindCode: "<kw>:" followed by a body of host-language code.
	KindCode
	// KindSection: "<kw>: values" (a directive at file level, a section inside a block).
	KindSection
)

// NameRule says whether a named keyword block declares a name.
type NameRule uint8

const (
	NameNone NameRule = iota
	NameOptional
	NameRequired
)

// Arity is the structural shape of a section's value list.
type Arity uint8

const (
	// ArityMixed: positional values followed by key=value pairs.
	ArityMixed Arity = iota
	// AritySingle: at most one positional value.
	AritySingle
	// ArityPositional: any number of positional values, no key=value pairs.
	ArityPositional
)

func (a Arity) String() string {
	switch a {
	case AritySingle:
		return "single"
	case ArityPositional:
		return "positional"
	default:
		return "mixed"
	}
}

// Entry describes a keyword in a given context.
type Entry struct {
	Word  string
	Kind  Kind
	Name  NameRule
	Body  Context // набор секций для KindNamed/KindUse
	Arity Arity   // для KindSection
}

// Lookup returns the meaning of word in ctx.
func Lookup(ctx Context, word string) (Entry, bool) {
	e, ok := tables[ctx][word]
	return e, ok
}

// Words returns the keywords recognised in ctx, sorted.
func Words(ctx Context) []string {
	words := make([]string, 0, len(tables[ctx]))
	for w := range tables[ctx] {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Suggest returns the keyword of ctx closest to a misspelt word, if one is
// within two edits of it.
func Suggest(ctx Context, word string) (string, bool) {
	best, bestDist := "", 3
	for _, w := range Words(ctx) {
		if d := distance(word, w); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best, best != ""
}

// distance is the Levenshtein distance between a and b in bytes.
func distance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
