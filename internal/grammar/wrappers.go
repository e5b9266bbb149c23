package grammar

// Conditional wrappers are host-language compound statements whose body may
// contain keyword blocks.
var wrappers = map[string]struct{}{
	"if": {}, "elif": {}, "else": {},
	"for": {}, "while": {}, "with": {},
	"try": {}, "except": {}, "finally": {},
}

// IsWrapper reports whether word opens a conditional wrapper.
func IsWrapper(word string) bool {
	_, ok := wrappers[word]
	return ok
}

// IsContinuation reports whether word continues a preceding compound
// statement (elif/else/except/finally) rather than starting a new one.
func IsContinuation(word string) bool {
	switch word {
	case "elif", "else", "except", "finally":
		return true
	}
	return false
}

// Continues reports whether clause may directly follow a clause opened by prev.
func Continues(prev, clause string) bool {
	switch prev {
	case "if", "elif":
		return clause == "elif" || clause == "else"
	case "for", "while":
		return clause == "else"
	case "try":
		return clause == "except" || clause == "finally"
	case "except":
		return clause == "except" || clause == "else" || clause == "finally"
	case "else":
		return clause == "finally"
	}
	return false
}

// IsBare reports whether a wrapper header has no expression (else:, try:, finally:).
func IsBare(word string) bool {
	switch word {
	case "else", "try", "finally":
		return true
	}
	return false
}
