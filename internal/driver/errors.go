package driver

import (
	"fmt"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

// FileError reports a failure to read or write a workflow file.
type FileError struct {
	Code diag.Code // IOLoadFileError или IOWriteFileError
	Path string
	Err  error
}

func (e *FileError) Error() string {
	op := "read"
	if e.Code == diag.IOWriteFileError {
		op = "write"
	}
	return fmt.Sprintf("cannot %s %s: %v", op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Diagnostic has no source position; the file could not be loaded.
func (e *FileError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, source.Span{}, e.Error())
}
