package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"snakefmt/internal/engine"
	"snakefmt/internal/version"
)

// versionReport is what "snakefmt version" prints: our own version and the
// version of the code formatter a run would delegate to.
type versionReport struct {
	Snakefmt string `json:"snakefmt"`
	Black    string `json:"black,omitempty"`
	BlackErr string `json:"black_error,omitempty"`
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().String("black", "black", "black executable to query")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the snakefmt version and the black it formats code with",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format = strings.ToLower(strings.TrimSpace(format))
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
		exe, err := cmd.Flags().GetString("black")
		if err != nil {
			return err
		}

		r := collectVersions(cmd.Context(), exe)
		if format == "json" {
			return writeVersionJSON(cmd.OutOrStdout(), r)
		}
		writeVersionPretty(cmd.OutOrStdout(), r, useColor(cmd, os.Stdout))
		return nil
	},
}

// collectVersions never fails: a missing or broken black is reported in the
// result.
func collectVersions(ctx context.Context, exe string) versionReport {
	if ctx == nil {
		ctx = context.Background()
	}
	r := versionReport{Snakefmt: version.Version}
	b, err := engine.NewBlack(engine.Options{Executable: exe})
	if err == nil {
		r.Black, err = b.Version(ctx)
	}
	if err != nil {
		r.BlackErr = err.Error()
	}
	return r
}

// writeVersionPretty prints in black's own "name, version" shape.
func writeVersionPretty(out io.Writer, r versionReport, colored bool) {
	fmt.Fprintf(out, "snakefmt, %s\n", version.Pretty(r.Snakefmt, colored))
	if r.BlackErr != "" {
		fmt.Fprintf(out, "black: unavailable (%s)\n", r.BlackErr)
		return
	}
	fmt.Fprintf(out, "black, %s\n", r.Black)
}

func writeVersionJSON(out io.Writer, r versionReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
