package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snakefmt/internal/block"
	"snakefmt/internal/diagfmt"
	"snakefmt/internal/driver"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] Snakefile",
	Short: "Print the block tree of a workflow file",
	Long: `Tree classifies a workflow file into code runs, keyword blocks and
conditional wrappers and prints the result. Useful to see how a file will be
split before it is formatted.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTree(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	result, err := driver.Tree(filePath)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	if result.Err != nil {
		rs := runSettings{colorErr: useColor(cmd, os.Stderr), diagJSON: format == "json"}
		renderError(os.Stderr, &driver.Result{Path: filePath, FileSet: result.FileSet}, result.Err, rs)
		return &exitError{code: exitFailure}
	}

	if format == "json" {
		return diagfmt.FormatTreeJSON(os.Stdout, result.Root, result.File)
	}
	return block.Dump(os.Stdout, result.Root)
}
