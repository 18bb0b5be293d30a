// Package gitgw is the git gateway (spec §4.1): it spawns git
// subprocesses, normalizes failures into internal/wterr values, and
// exposes typed helpers instead of raw argv slices. Nothing above this
// package shells out to git directly.
//
// Grounded on the teacher's internal/git/executor/shell.go: a thin
// os/exec wrapper with context-based timeouts and stdout/stderr
// capture, generalized here to return the typed Failure kinds spec.md
// §7 requires instead of bare fmt.Errorf strings.
package gitgw

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/worktrunk/worktrunk/internal/logx"
	"github.com/worktrunk/worktrunk/internal/wterr"
)

// Gateway runs git subprocesses rooted at a working directory.
type Gateway struct {
	// Env holds extra environment variables appended to every child
	// process (e.g. HOME, and never WORKTRUNK_DIRECTIVE_FILE — that is
	// stripped explicitly by the hook runner, not here).
	Env []string
}

// New returns a Gateway with no extra environment.
func New() *Gateway {
	return &Gateway{}
}

// LocalTimeout bounds ordinary local git subprocess calls (spec §5).
const LocalTimeout = 3 * time.Second

// NetworkTimeout bounds calls that may hit the network (ls-remote, fetch).
const NetworkTimeout = 5 * time.Second

// Run executes `git <args...>` with -C dir, returning stdout. On
// non-zero exit it returns a wterr.UnknownGitError carrying exit code
// and stderr; callers that need to distinguish specific failures
// (dirty tree, conflict, ff-rejected) inspect stderr text themselves,
// matching the teacher's approach of sniffing command-specific
// stderr patterns rather than parsing git's exit codes generically.
func (g *Gateway) Run(ctx context.Context, dir string, args ...string) (string, error) {
	stdout, _, err := g.RunCombined(ctx, dir, args...)
	return stdout, err
}

// RunCombined executes git and returns both stdout and stderr, along
// with an error only on a non-zero exit that isn't a recognized
// "soft" status (e.g. merge-tree's exit 1 meaning "conflicts found").
func (g *Gateway) RunCombined(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error) {
	full := args
	if dir != "" {
		full = append([]string{"-C", dir}, args...)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, LocalTimeout)
		defer cancel()
	}

	logGitInvocation(full)

	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(cmd.Environ(), g.Env...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout = out.String()
	stderr = errBuf.String()

	if runErr == nil {
		return stdout, stderr, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return stdout, stderr, wterr.Timeout{Op: "git " + strings.Join(full, " ")}
	}

	exitCode := -1
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	// git merge-tree exits 1 to mean "conflicts found", not failure.
	if len(args) > 0 && args[0] == "merge-tree" && exitCode == 1 {
		return stdout, stderr, nil
	}

	return stdout, stderr, wterr.UnknownGitError{Args: full, Exit: exitCode, Stderr: stderr}
}

func logGitInvocation(args []string) {
	if len(args) == 0 {
		return
	}
	// Tag routine read-only commands apart from notable ones so -vv
	// output stays readable with the status engine's fan-out; both
	// kinds are logged at debug level, only the message differs.
	routine := map[string]bool{
		"rev-parse": true, "rev-list": true, "symbolic-ref": true,
		"status": true, "diff": true,
	}
	idx := 0
	for idx < len(args) && args[idx] == "-C" {
		idx += 2
	}
	cmd := ""
	if idx < len(args) {
		cmd = args[idx]
	}
	if routine[cmd] {
		logx.Logger.Debug().Strs("args", args).Msg("git")
		return
	}
	logx.Logger.Debug().Strs("args", args).Msg("git (notable)")
}
