package driver

import (
	"snakefmt/internal/block"
	"snakefmt/internal/classify"
	"snakefmt/internal/lexer"
	"snakefmt/internal/source"
	"snakefmt/internal/token"
)

// TokenizeResult holds the tokens of one file. On a lexing failure Tokens
// ends with the Invalid token and Err is the *lexer.Error.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Err     error
}

// Tokenize loads path and drains the lexer over it.
func Tokenize(path string) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	tokens, err := lexer.Tokenize(file, lexer.Options{})
	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Err:     err,
	}, nil
}

// TreeResult holds the block tree of one file.
type TreeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Root    *block.Root
	Err     error
}

// Tree loads path and classifies it into blocks.
func Tree(path string) (*TreeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	root, err := classify.Classify(file, lexer.New(file, lexer.Options{}))
	return &TreeResult{
		FileSet: fs,
		File:    file,
		Root:    root,
		Err:     err,
	}, nil
}
