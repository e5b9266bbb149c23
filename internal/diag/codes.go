package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0
	// Лексические
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnterminatedBracket Code = 1003
	LexUnmatchedBracket    Code = 1004
	LexBadDedent           Code = 1005
	LexBadContinuation     Code = 1006
	LexBadNumber           Code = 1007

	// Структура DSL-блоков (классификатор)
	SynInfo                Code = 2000
	SynExpectColon         Code = 2001
	SynExpectNewline       Code = 2002
	SynInvalidName         Code = 2003
	SynUnrecognisedKeyword Code = 2004
	SynDuplicateKeyword    Code = 2005
	SynEmptyBlock          Code = 2006
	SynInconsistentIndent  Code = 2007
	SynOverIndented        Code = 2008
	SynInvalidKeyValue     Code = 2009
	SynTooManyParams       Code = 2010
	SynPositionalRequired  Code = 2011
	SynUnexpectedIndent    Code = 2012

	// Внешний форматтер кода
	FmtInfo              Code = 3000
	FmtEngineFailed      Code = 3001
	FmtEngineUnavailable Code = 3002

	// Ошибки I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		LexInfo:                "Lexical information",
		LexUnknownChar:         "Unknown character",
		LexUnterminatedString:  "Unterminated string",
		LexUnterminatedBracket: "Unterminated bracket",
		LexUnmatchedBracket:    "Unmatched closing bracket",
		LexBadDedent:           "Unindent does not match any outer indentation level",
		LexBadContinuation:     "Unexpected character after line continuation",
		LexBadNumber:           "Malformed number literal",
		SynInfo:                "Structure information",
		SynExpectColon:         "Expect colon",
		SynExpectNewline:       "Expect newline after block header",
		SynInvalidName:         "Invalid block name",
		SynUnrecognisedKeyword: "Unrecognised keyword",
		SynDuplicateKeyword:    "Keyword specified twice",
		SynEmptyBlock:          "Keyword block has no sections",
		SynInconsistentIndent:  "Inconsistent indentation",
		SynOverIndented:        "Over-indented keyword",
		SynInvalidKeyValue:     "Invalid key/value parameter",
		SynTooManyParams:       "Too many parameters",
		SynPositionalRequired:  "Positional parameter required",
		SynUnexpectedIndent:    "Unexpected indent",
		FmtInfo:                "Formatter information",
		FmtEngineFailed:        "Code formatter rejected a code segment",
		FmtEngineUnavailable:   "Code formatter is not available",
		IOLoadFileError:        "I/O load file error",
		IOWriteFileError:       "I/O write file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
