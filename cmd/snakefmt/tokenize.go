package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snakefmt/internal/diagfmt"
	"snakefmt/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] Snakefile",
	Short: "Print the tokens of a workflow file",
	Long:  `Tokenize runs the lexer over a workflow file and prints every token with its position`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	result, err := driver.Tokenize(filePath)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Токены печатаем до ошибки лексера включительно
	if format == "json" {
		err = diagfmt.FormatTokensJSON(os.Stdout, result.Tokens)
	} else {
		err = diagfmt.FormatTokensPretty(os.Stdout, result.Tokens)
	}
	if err != nil {
		return err
	}

	if result.Err != nil {
		rs := runSettings{colorErr: useColor(cmd, os.Stderr), diagJSON: format == "json"}
		renderError(os.Stderr, &driver.Result{Path: filePath, FileSet: result.FileSet}, result.Err, rs)
		return &exitError{code: exitFailure}
	}
	return nil
}
