package format

import (
	"strings"

	"snakefmt/internal/block"
	"snakefmt/internal/token"
)

// joinAtoms prints a value expression with canonical token spacing:
//
//	no space after an opening or before a closing bracket, before ',' or ':';
//	none around '.', '=' and binary '**';
//	none between a callee or subscripted value and its '(' or '[';
//	unary operators stick to their operand;
//	':' inside '[...]' is a slice colon and takes no space after it;
//	everything else is separated by one space.
//
// Multi-line literals are copied verbatim.
func joinAtoms(atoms []block.Atom) string {
	var sb strings.Builder
	var brackets []string
	unary := false
	for i, a := range atoms {
		if i > 0 && spaceBetween(atoms[i-1], a, brackets, unary) {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.Text)

		unary = false
		switch {
		case a.Kind == token.Op && isOpen(a.Text):
			brackets = append(brackets, a.Text)
		case a.Kind == token.Op && isClose(a.Text):
			if len(brackets) > 0 {
				brackets = brackets[:len(brackets)-1]
			}
		case a.Kind == token.Op && isUnaryOp(a.Text):
			unary = i == 0 || !endsOperand(atoms[i-1])
		}
	}
	return sb.String()
}

func spaceBetween(prev, next block.Atom, brackets []string, prevUnary bool) bool {
	inSubscript := len(brackets) > 0 && brackets[len(brackets)-1] == "["
	switch {
	case prevUnary:
		return false
	case isOp(prev, "(", "[", "{"):
		return false
	case isOp(next, ")", "]", "}", ",", ":"):
		return false
	case isOp(prev, ",") || isOp(prev, ":"):
		return !(isOp(prev, ":") && inSubscript)
	case isOp(prev, ".") || isOp(next, "."):
		// "1 .real": без пробела число съест точку
		return prev.Kind == token.Number
	case isOp(prev, "=") || isOp(next, "="):
		return false
	case isOp(next, "(", "["):
		return !endsOperand(prev) || prev.Kind == token.Number
	case isOp(next, "**") && endsOperand(prev):
		return false
	case isOp(prev, "**"):
		// бинарный ** (унарный обработан выше)
		return false
	}
	return true
}

// endsOperand reports whether a completes an operand, making a following
// operator binary.
func endsOperand(a block.Atom) bool {
	switch a.Kind {
	case token.Name, token.Number, token.String, token.FString:
		return true
	case token.Keyword:
		return a.Text == "True" || a.Text == "False" || a.Text == "None"
	case token.Op:
		return isClose(a.Text) || a.Text == "..."
	}
	return false
}

func isOp(a block.Atom, texts ...string) bool {
	if a.Kind != token.Op {
		return false
	}
	for _, t := range texts {
		if a.Text == t {
			return true
		}
	}
	return false
}

func isOpen(s string) bool  { return s == "(" || s == "[" || s == "{" }
func isClose(s string) bool { return s == ")" || s == "]" || s == "}" }

func isUnaryOp(s string) bool {
	switch s {
	case "-", "+", "~", "*", "**":
		return true
	}
	return false
}
