package lifecycle

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/worktrunk/worktrunk/internal/gitgw"
)

// runShell runs command through `sh -c` in dir, mirroring the
// hooks runner's own invocation shape, and returns its combined
// output.
func runShell(ctx context.Context, dir, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// StepCommitResult is `wt step commit`'s outcome.
type StepCommitResult struct {
	Committed bool
	Message   string
}

// StepCommit stages worktreePath per policy and, if anything is
// staged, commits it with a generated message (spec §4.6 step 2's
// commit half, exposed standalone for `wt step commit`).
func (p *Pipeline) StepCommit(ctx context.Context, worktreePath, branch, target string, policy gitgw.StagePolicy, noVerify bool) (StepCommitResult, error) {
	if err := p.GW.Stage(ctx, worktreePath, policy); err != nil {
		return StepCommitResult{}, err
	}
	empty, err := p.GW.StagedDiffEmpty(ctx, worktreePath)
	if err != nil {
		return StepCommitResult{}, err
	}
	if empty {
		return StepCommitResult{}, nil
	}

	message, err := p.commitMessage(ctx, worktreePath, branch, target)
	if err != nil {
		return StepCommitResult{}, err
	}
	if err := p.GW.Commit(ctx, worktreePath, message, noVerify); err != nil {
		return StepCommitResult{}, err
	}
	return StepCommitResult{Committed: true, Message: message}, nil
}

// StepSquashResult is `wt step squash`'s outcome.
type StepSquashResult struct {
	Squashed  bool
	BackupRef string
}

// StepSquash exposes the merge pipeline's squash step standalone.
func (p *Pipeline) StepSquash(ctx context.Context, worktreePath, branch, target string) (StepSquashResult, error) {
	squashed, ref, err := p.squash(ctx, worktreePath, branch, target)
	if err != nil {
		return StepSquashResult{}, err
	}
	return StepSquashResult{Squashed: squashed, BackupRef: ref}, nil
}

// StepRebase rebases worktreePath's branch onto target (spec §4.6
// step 4, standalone).
func (p *Pipeline) StepRebase(ctx context.Context, worktreePath, target string) error {
	return p.GW.RebaseOnto(ctx, worktreePath, target)
}

// StepPush fast-forwards target to sourcePath's current tip, the same
// way the merge pipeline's push step does (spec §4.6 step 7).
func (p *Pipeline) StepPush(ctx context.Context, sourcePath, target string) error {
	return p.fastForwardTarget(ctx, sourcePath, target)
}

// StepCopyIgnored copies git-ignored files (e.g. `.env`, local tool
// caches) from one worktree into another, preserving their relative
// paths, so a freshly created worktree doesn't start without the
// untracked local config its sibling already has.
func (p *Pipeline) StepCopyIgnored(ctx context.Context, fromPath, toPath string) ([]string, error) {
	files, err := p.GW.ListIgnoredFiles(ctx, fromPath)
	if err != nil {
		return nil, err
	}

	copied := make([]string, 0, len(files))
	for _, rel := range files {
		src := filepath.Join(fromPath, rel)
		dst := filepath.Join(toPath, rel)
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("copy-ignored %s: %w", rel, err)
		}
		copied = append(copied, rel)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// ForEachResult is one worktree's outcome from `wt step for-each`.
type ForEachResult struct {
	Branch string
	Path   string
	Output string
	Err    error
}

// StepForEach runs command in every worktree's directory, in worktree
// list order, continuing past a failing worktree so the rest still
// run (same "report every failure at the end" shape as Remove).
func (p *Pipeline) StepForEach(ctx context.Context, command string) ([]ForEachResult, error) {
	worktrees, err := p.GW.ListWorktrees(ctx, p.RepoPath)
	if err != nil {
		return nil, err
	}

	results := make([]ForEachResult, 0, len(worktrees))
	var failures int
	for _, wt := range worktrees {
		res := ForEachResult{Branch: wt.Branch, Path: wt.Path}
		res.Output, res.Err = runShell(ctx, wt.Path, command)
		if res.Err != nil {
			failures++
		}
		results = append(results, res)
	}
	if failures > 0 {
		return results, fmt.Errorf("%d of %d worktrees failed", failures, len(worktrees))
	}
	return results, nil
}
