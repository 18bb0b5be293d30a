// Package render is worktrunk's output layer (spec §4.9): every
// command writes through a small set of named verbs —
// Progress/Success/Info/Warning/Hint/Error/ChangeDirectory/
// Execute/Gutter/Table/Data — instead of branching on interactive vs.
// directive mode itself. The mode is resolved once at process startup
// by Init and never re-checked by command code (spec §9's "check the
// mode once at the edge" design note); this package is the edge.
//
// Grounded on the teacher's internal/tui/components/styles.go for
// lipgloss usage (named styles, Foreground/Bold, nothing fancier); the
// verb-based output facade itself has no teacher analogue — catnip
// renders through a Bubble Tea TUI model, not a one-shot CLI's
// stdout/stderr — and comes from spec.md §4.9/§9.
package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/shellchannel"
	"github.com/worktrunk/worktrunk/internal/wterr"
)

// Format selects how Table/Data render (spec §6: --format flag).
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Hinter is implemented by wterr types that carry an actionable hint
// beyond their summary message (e.g. "use --create to create it").
type Hinter interface {
	Hint() string
}

// ctx is the process-wide output context (spec §9's "(i) the output
// context (set once, immutable after)"). It is nil until Init runs;
// every named verb below tolerates that by falling back to plain
// stderr/stdout writers, which keeps the package usable from tests
// that never call Init.
var ctx *Context

// Context bundles everything a named output verb needs: the directive
// buffer to append CD/EXEC requests to, the chosen format, and whether
// stderr is a color-capable terminal.
type Context struct {
	Directives *shellchannel.Writer
	Format     Format
	Color      bool
}

// Init sets the process-wide output context. Call exactly once, at
// CLI startup, after resolving --format and NO_COLOR/CLICOLOR_FORCE.
func Init(c *Context) {
	ctx = c
}

func directives() *shellchannel.Writer {
	if ctx != nil && ctx.Directives != nil {
		return ctx.Directives
	}
	return shellchannel.Detect("")
}

func color() bool {
	return ctx == nil || ctx.Color
}

func style(s lipgloss.Style) lipgloss.Style {
	if !color() {
		return s.UnsetForeground().UnsetBackground().UnsetBold()
	}
	return s
}

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Progress prints a transient "doing something" line (spec's progress
// verb). Always stderr, never buffered with the directive channel.
func Progress(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, style(infoStyle).Render(fmt.Sprintf(format, args...)))
}

// Success prints a "✓ done" line.
func Success(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, style(successStyle).Render("✓ "+fmt.Sprintf(format, args...)))
}

// Info prints a plain informational line.
func Info(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// Warning prints a "! heads up" line.
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, style(warningStyle).Render("! "+fmt.Sprintf(format, args...)))
}

// Hint prints a dim follow-up suggestion, normally right after Error.
func Hint(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, style(hintStyle).Render("  "+fmt.Sprintf(format, args...)))
}

// Gutter prints an indented supplementary detail line (e.g. a
// subprocess's captured stderr), dimmed, under a summary line.
func Gutter(format string, args ...interface{}) {
	for _, line := range splitLines(fmt.Sprintf(format, args...)) {
		fmt.Fprintln(os.Stderr, style(gutterStyle).Render("  "+line))
	}
}

// Error renders the "✗ summary / gutter / hint" triad (spec §7/§4.9)
// for any error, typed or not, and returns the process exit code to
// use. Typed wterr.Coded errors drive the exit code; anything else
// exits 1.
func Error(err error) wterr.ExitCode {
	fmt.Fprintln(os.Stderr, style(errorStyle).Render("✗ "+err.Error()))

	var g wterr.UnknownGitError
	if errors.As(err, &g) && g.Stderr != "" {
		Gutter(g.Stderr)
	}
	var h Hinter
	if errors.As(err, &h) && h.Hint() != "" {
		Hint(h.Hint())
	}

	var coded wterr.Coded
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return wterr.ExitFailure
}

// ChangeDirectory buffers a CD directive for the shell wrapper to act
// on after the process exits (spec §4.6/§4.8).
func ChangeDirectory(path string) {
	directives().Add(lifecycle.Directive{Kind: lifecycle.DirectiveCD, Path: path})
}

// Execute buffers an EXEC directive: a fully-escaped command line the
// wrapper runs in the caller's shell after the CLI exits.
func Execute(command string) {
	directives().Add(lifecycle.Directive{Kind: lifecycle.DirectiveExec, Command: command})
}

// EmitDirective dispatches a lifecycle pipeline's result through the
// matching named verb; DirectiveNone is a no-op so callers can pass
// every pipeline result unconditionally.
func EmitDirective(d lifecycle.Directive) {
	switch d.Kind {
	case lifecycle.DirectiveCD:
		ChangeDirectory(d.Path)
	case lifecycle.DirectiveExec:
		Execute(d.Command)
	case lifecycle.DirectiveRaw:
		directives().Add(d)
	}
}

// Flush emits the buffered directive channel. Call once, at the very
// end of a successful command, after all other output.
func Flush() error {
	return directives().Flush()
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
