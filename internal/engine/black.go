package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"snakefmt/internal/diag"
	"snakefmt/internal/source"
)

// Black runs the black formatter as a subprocess, one process per call,
// feeding the fragment on stdin.
type Black struct {
	opts Options
	path string
}

// NewBlack resolves the black executable. The lookup error is reported as
// an *Error with FmtEngineUnavailable.
func NewBlack(opts Options) (*Black, error) {
	name := opts.Executable
	if name == "" {
		name = "black"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, &Error{
			Code:   diag.FmtEngineUnavailable,
			Reason: fmt.Sprintf("code formatter %q not found", name),
			Err:    err,
		}
	}
	return &Black{opts: opts, path: path}, nil
}

// Fingerprint identifies the options that influence black's output.
func (b *Black) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString("black")
	if b.opts.SkipStringNormalization {
		sb.WriteString("|S")
	}
	for _, v := range b.opts.TargetVersions {
		sb.WriteString("|")
		sb.WriteString(v)
	}
	return sb.String()
}

func (b *Black) args(lineLength int) []string {
	args := []string{"-q", "-l", strconv.Itoa(lineLength)}
	if b.opts.SkipStringNormalization {
		args = append(args, "-S")
	}
	for _, v := range b.opts.TargetVersions {
		args = append(args, "-t", v)
	}
	return append(args, "-")
}

// FormatCode implements Engine.
func (b *Black) FormatCode(ctx context.Context, text string, lineLength int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	// #nosec G204 -- executable comes from configuration
	cmd := exec.CommandContext(ctx, b.path, b.args(lineLength)...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", &Error{Code: diag.FmtEngineUnavailable, Reason: "cannot run code formatter", Err: err}
		}
		return "", parseBlackError(stderr.String(), err)
	}
	return stdout.String(), nil
}

// Version asks the executable for its version, e.g. "24.4.2" from
// "black, 24.4.2 (compiled: yes)".
func (b *Black) Version(ctx context.Context) (string, error) {
	// #nosec G204 -- executable comes from configuration
	out, err := exec.CommandContext(ctx, b.path, "--version").Output()
	if err != nil {
		return "", &Error{Code: diag.FmtEngineUnavailable, Reason: "cannot query code formatter version", Err: err}
	}
	return parseBlackVersion(string(out)), nil
}

var blackVersionRe = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[ab]\d+|\.dev\d+)?`)

// parseBlackVersion extracts the version number from the first line of
// "black --version"; the whole line is returned when it has none.
func parseBlackVersion(out string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	if v := blackVersionRe.FindString(first); v != "" {
		return v
	}
	return strings.TrimSpace(first)
}

// "error: cannot format -: Cannot parse for target version Python 3.12: 3:7: foo("
var blackParseRe = regexp.MustCompile(`Cannot parse[^:]*: (\d+):(\d+): ?(.*)`)

func parseBlackError(stderr string, cause error) *Error {
	msg := strings.TrimSpace(stderr)
	e := &Error{Code: diag.FmtEngineFailed, Err: cause}
	if m := blackParseRe.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.ParseUint(m[1], 10, 32)
		col, _ := strconv.ParseUint(m[2], 10, 32)
		// black считает колонки с нуля
		e.Pos = source.LineCol{Line: uint32(line), Col: uint32(col) + 1}
		e.Reason = "cannot parse code: " + strings.TrimSpace(m[3])
		return e
	}
	if msg == "" {
		msg = cause.Error()
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	e.Reason = strings.TrimPrefix(msg, "error: ")
	return e
}
