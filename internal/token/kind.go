package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Name represents an identifier, including workflow keywords.
	Name
	// Keyword represents a reserved word of the host language (if, for, def, ...).
	Keyword
	// Number represents a numeric literal.
	Number
	// String represents a plain, bytes or raw string literal.
	String
	// FString represents a formatted string literal (f"...").
	FString
	// Op represents an operator or delimiter.
	Op
	// Comment represents a '#' comment up to the end of the line.
	Comment

	// Newline terminates a logical line.
	Newline
	// NL is a newline that does not end a logical line (blank line, comment line,
	// newline inside brackets).
	NL
	// Indent opens a deeper indentation level.
	Indent
	// Dedent closes one indentation level.
	Dedent
)

var kindNames = [...]string{
	Invalid: "Invalid",
	EOF:     "EOF",
	Name:    "Name",
	Keyword: "Keyword",
	Number:  "Number",
	String:  "String",
	FString: "FString",
	Op:      "Op",
	Comment: "Comment",
	Newline: "Newline",
	NL:      "NL",
	Indent:  "Indent",
	Dedent:  "Dedent",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}
