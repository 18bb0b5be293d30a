// Package shellchannel implements the directive channel (spec §4.8):
// the contract between the worktrunk binary and the thin shell-wrapper
// function installed in the user's shell. A pipeline in
// internal/lifecycle never talks to the shell directly; it returns a
// lifecycle.Directive, and this package is the only place that knows
// how to turn one into bytes a wrapper understands.
//
// Two encodings exist and both are supported, chosen by how the
// wrapper invoked the binary:
//
//   - File-based (preferred): the wrapper exports
//     WORKTRUNK_DIRECTIVE_FILE pointing at a temp file it will source
//     after the binary exits. Writer writes literal shell commands to
//     that file and nothing goes to stdout.
//   - Stream-based (older/portable, --internal=<shell>): NUL-terminated
//     records on stdout, which the wrapper splits and dispatches.
//
// Grounded on the teacher's internal/config (single responsibility,
// tightly scoped package) for shape; the two-encoding channel itself
// has no teacher analogue — catnip is a server with no parent shell to
// influence — and comes from spec.md §4.8.
package shellchannel

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/worktrunk/worktrunk/internal/envkeys"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/template"
)

const (
	cdMarker   = "__WORKTRUNK_CD__"
	execMarker = "__WORKTRUNK_EXEC__"
)

// Mode distinguishes the two channel encodings.
type Mode int

const (
	// ModeNone means no wrapper is present: directives are dropped and
	// only their side effects (already-performed git operations) stand.
	// This is the plain, non-interactive invocation.
	ModeNone Mode = iota
	ModeFile
	ModeStream
)

// Writer accumulates directives during a command's execution and
// emits them as one script at exit (spec §4.8's "directive buffer").
type Writer struct {
	mode       Mode
	filePath   string
	stdout     io.Writer
	directives []lifecycle.Directive
}

// Detect chooses the channel mode from the process environment: a
// file path takes precedence over stream mode, matching the wrapper's
// own preference order (spec §4.8: "file-based (preferred)").
func Detect(internalShell string) *Writer {
	if path := os.Getenv(envkeys.DirectiveFile); path != "" {
		return &Writer{mode: ModeFile, filePath: path, stdout: os.Stdout}
	}
	if internalShell != "" {
		return &Writer{mode: ModeStream, stdout: os.Stdout}
	}
	return &Writer{mode: ModeNone}
}

// Add appends a directive to the buffer. DirectiveNone is a no-op so
// callers can push every pipeline result unconditionally.
func (w *Writer) Add(d lifecycle.Directive) {
	if d.Kind == lifecycle.DirectiveNone {
		return
	}
	w.directives = append(w.directives, d)
}

// Flush emits the accumulated directives in the channel's encoding.
// Safe to call once, at the very end of command execution, after all
// other stdout/stderr output has been written.
func (w *Writer) Flush() error {
	switch w.mode {
	case ModeFile:
		return w.flushFile()
	case ModeStream:
		return w.flushStream()
	default:
		return w.flushNone()
	}
}

// flushNone handles the no-wrapper case. CD/EXEC directives have
// nowhere to go and are dropped (their git side effects already ran);
// Raw directives are printed straight to stdout, since `config shell
// init`'s whole purpose is to be eval'd from a plain command
// substitution before any wrapper exists to route it through a file.
func (w *Writer) flushNone() error {
	bw := bufio.NewWriter(os.Stdout)
	for _, d := range w.directives {
		if d.Kind == lifecycle.DirectiveRaw {
			fmt.Fprintln(bw, d.Raw)
		}
	}
	return bw.Flush()
}

func (w *Writer) flushFile() error {
	f, err := os.OpenFile(w.filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening directive file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, d := range w.directives {
		switch d.Kind {
		case lifecycle.DirectiveCD:
			fmt.Fprintf(bw, "cd %s\n", template.ShellEscape(d.Path))
		case lifecycle.DirectiveExec:
			fmt.Fprintln(bw, d.Command)
		case lifecycle.DirectiveRaw:
			fmt.Fprintln(bw, d.Raw)
		}
	}
	return bw.Flush()
}

func (w *Writer) flushStream() error {
	bw := bufio.NewWriter(w.stdout)
	for _, d := range w.directives {
		switch d.Kind {
		case lifecycle.DirectiveCD:
			fmt.Fprintf(bw, "%s%s\x00", cdMarker, d.Path)
		case lifecycle.DirectiveExec:
			fmt.Fprintf(bw, "%s%s\x00", execMarker, d.Command)
		case lifecycle.DirectiveRaw:
			fmt.Fprintf(bw, "%s\x00", d.Raw)
		}
	}
	return bw.Flush()
}

// StripFromEnv removes WORKTRUNK_DIRECTIVE_FILE from a child process's
// environment (spec §4.8: "hooks cannot write directives"). base
// should be os.Environ() when the caller hasn't customized the
// environment yet. Delegates to envkeys so internal/hooks can apply
// the same stripping without importing this package.
func StripFromEnv(base []string) []string {
	return envkeys.StripDirectiveFile(base)
}
