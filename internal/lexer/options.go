package lexer

import (
	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

type Options struct {
	// Reporter получает копию фатальной ошибки; может быть nil.
	// Сама ошибка в любом случае доступна через Lexer.Err().
	Reporter diag.Reporter
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}
