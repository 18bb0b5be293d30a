package lifecycle

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

const defaultCommitMessage = "wip"
const defaultSquashMessage = "squash"

// commitMessage produces the message for the auto-commit step (spec
// §4.6 merge step 2): the configured commit-generation command fed the
// staged diff on stdin, or a fixed default when none is configured.
func (p *Pipeline) commitMessage(ctx context.Context, worktreePath, branch, target string) (string, error) {
	gen := p.Config.User.CommitGeneration
	if gen.Command == "" {
		return defaultCommitMessage, nil
	}
	return p.runCommitGenerator(ctx, worktreePath, gen.Command, gen.Args, "--cached")
}

// squashMessage produces the message for the squash commit (spec §4.6
// step 3), diffing the merge base against the pre-squash tip.
func (p *Pipeline) squashMessage(ctx context.Context, worktreePath, branch, target string) (string, error) {
	gen := p.Config.User.CommitGeneration
	if gen.Command == "" {
		return defaultSquashMessage, nil
	}
	// Called after the reset to the merge base and the stage-all, so the
	// staged diff is exactly merge base -> pre-squash tip.
	return p.runCommitGenerator(ctx, worktreePath, gen.Command, gen.Args, "--cached")
}

func (p *Pipeline) runCommitGenerator(ctx context.Context, worktreePath, command string, args []string, diffArgs ...string) (string, error) {
	diff, err := p.GW.Run(ctx, worktreePath, append([]string{"diff"}, diffArgs...)...)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = worktreePath
	cmd.Stdin = strings.NewReader(diff)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(out.String())
	if msg == "" {
		return defaultCommitMessage, nil
	}
	return msg, nil
}
