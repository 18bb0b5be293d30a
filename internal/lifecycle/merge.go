package lifecycle

import (
	"context"
	"fmt"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/wterr"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// MergeOptions are the `wt merge` flags (spec §4.6 merge).
type MergeOptions struct {
	NoSquash bool
	NoCommit bool
	NoRebase bool
	NoRemove bool
	NoVerify bool
	Yes      bool
	Stage    gitgw.StagePolicy
}

// MergeResult reports what the pipeline did, for the renderer.
type MergeResult struct {
	Branch       string
	Target       string
	Squashed     bool
	Rebased      bool
	BackupRef    string
	Removed      bool
	MainSwitched bool
	Directive    Directive
}

// Merge implements spec §4.6's ten-step merge pipeline: auto-commit,
// optional squash (with a backup ref), rebase, hook gates around the
// commit/rebase boundary, a fast-forward push of the target branch,
// and background removal of the now-merged source worktree.
//
// Grounded on the teacher's internal/services/branch_sync.go, which
// chains several git operations (fetch, rebase, push) into a single
// reported outcome; the squash-with-backup-ref and hook-gate steps
// have no teacher analogue and come from spec.md §4.6.
func (p *Pipeline) Merge(ctx context.Context, sourcePath, branch, target string, opts MergeOptions) (MergeResult, error) {
	if target == "" {
		target = p.DefaultBranch
	}
	result := MergeResult{Branch: branch, Target: target}

	// Step 1: validate.
	current, detached, err := p.GW.CurrentBranch(ctx, sourcePath)
	if err != nil {
		return result, err
	}
	if detached {
		return result, wterr.DetachedHead{Path: sourcePath}
	}
	if current != branch {
		return result, fmt.Errorf("worktree at %s is on %q, not %q", sourcePath, current, branch)
	}
	if branch == target {
		return result, wterr.AlreadyOnTarget{Branch: branch}
	}
	if !p.GW.BranchExists(ctx, p.RepoPath, target) {
		return result, wterr.BranchNotFound{Branch: target}
	}

	stagePolicy := opts.Stage
	if stagePolicy == "" {
		stagePolicy = gitgw.StagePolicy(p.Config.User.Commit.Stage)
	}
	if stagePolicy == "" {
		stagePolicy = gitgw.StageAll
	}

	willCommit := false
	// Step 2: auto-commit.
	if !opts.NoCommit {
		dirty, err := p.GW.IsDirty(ctx, sourcePath)
		if err != nil {
			return result, err
		}
		if dirty {
			willCommit = true
		}
	}

	vars := p.vars(branch, sourcePath, "", target)

	// Step 5: pre-commit hooks, fail-fast, only when step 2 will commit.
	if willCommit {
		if _, err := p.Hooks.Run(ctx, wtconfig.HookPreCommit, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes}); err != nil {
			return result, err
		}
		if err := p.GW.Stage(ctx, sourcePath, stagePolicy); err != nil {
			return result, err
		}
		message, err := p.commitMessage(ctx, sourcePath, branch, target)
		if err != nil {
			return result, err
		}
		if err := p.GW.Commit(ctx, sourcePath, message, opts.NoVerify); err != nil {
			return result, err
		}
	}

	// Step 3: squash.
	if !opts.NoSquash && !opts.NoCommit {
		squashed, backupRef, err := p.squash(ctx, sourcePath, branch, target)
		if err != nil {
			return result, err
		}
		result.Squashed = squashed
		result.BackupRef = backupRef
	}

	// Step 4: rebase, skipped if target is already an ancestor of HEAD.
	if !opts.NoRebase {
		isAncestor := p.GW.IsAncestor(ctx, sourcePath, target, "HEAD")
		if !isAncestor {
			if err := p.GW.RebaseOnto(ctx, sourcePath, target); err != nil {
				return result, err
			}
			result.Rebased = true
		}
	}

	// Step 6: pre-merge hooks, fail-fast.
	if _, err := p.Hooks.Run(ctx, wtconfig.HookPreMerge, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes}); err != nil {
		return result, err
	}

	// Step 7: fast-forward push of target to current branch tip.
	if err := p.fastForwardTarget(ctx, sourcePath, target); err != nil {
		return result, err
	}

	safeToForceDelete, err := p.classifyForRemoval(ctx, branch, target)
	if err != nil {
		safeToForceDelete = false
	}

	// Step 8: pre-remove hooks, fail-fast, unless --no-remove.
	if !opts.NoRemove {
		if _, err := p.Hooks.Run(ctx, wtconfig.HookPreRemove, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes}); err != nil {
			return result, err
		}
	}

	// Main worktree is never removed; switch it to the default branch
	// instead (spec §4.6 merge edge case).
	isMain := sourcePath == p.RepoPath
	if !opts.NoRemove {
		if isMain {
			if _, err := p.GW.Run(ctx, sourcePath, "checkout", p.DefaultBranch); err != nil {
				return result, err
			}
			result.MainSwitched = true
		} else {
			p.removeMergedWorktree(sourcePath, branch, safeToForceDelete)
			result.Removed = true
			result.Directive = Directive{Kind: DirectiveCD, Path: p.RepoPath}
		}
	}

	// Step 10: post-merge hooks, in the target worktree, after removal
	// is spawned.
	targetVars := p.vars(target, p.RepoPath, "", "")
	_, _ = p.Hooks.Run(ctx, wtconfig.HookPostMerge, targetVars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes})

	return result, nil
}

// squash counts commits since merge_base(target,HEAD); if more than
// one, it records refs/wt-backup/<branch> pointing at the current tip,
// resets to the merge base, and creates a single squash commit (spec
// §4.6 step 3). Aborts EmptySquash if the result would be empty.
func (p *Pipeline) squash(ctx context.Context, sourcePath, branch, target string) (squashed bool, backupRef string, err error) {
	mergeBase, err := p.Cache.MergeBase(ctx, target, branch)
	if err != nil {
		return false, "", err
	}
	count, err := p.GW.CommitCount(ctx, sourcePath, mergeBase, "HEAD")
	if err != nil {
		return false, "", err
	}
	if count <= 1 {
		return false, "", nil
	}

	head, err := p.GW.RevParse(ctx, sourcePath, "HEAD")
	if err != nil {
		return false, "", err
	}
	ref := "refs/wt-backup/" + branch
	if err := p.GW.UpdateRef(ctx, p.RepoPath, ref, head); err != nil {
		return false, "", err
	}

	empty, err := p.GW.DiffEmpty(ctx, sourcePath, mergeBase, head)
	if err != nil {
		return false, "", err
	}
	if empty {
		return false, "", wterr.EmptySquash{Branch: branch}
	}

	if err := p.GW.ResetMixed(ctx, sourcePath, mergeBase); err != nil {
		return false, "", err
	}
	if err := p.GW.Stage(ctx, sourcePath, gitgw.StageAll); err != nil {
		return false, "", err
	}
	message, err := p.squashMessage(ctx, sourcePath, branch, target)
	if err != nil {
		return false, "", err
	}
	if err := p.GW.Commit(ctx, sourcePath, message, true); err != nil {
		return false, "", err
	}
	return true, ref, nil
}

// fastForwardTarget fast-forwards target to the source branch's tip,
// first stashing and restoring any non-conflicting uncommitted edits
// in the target's own worktree (spec §4.6 step 7).
func (p *Pipeline) fastForwardTarget(ctx context.Context, sourcePath, target string) error {
	tip, err := p.GW.RevParse(ctx, sourcePath, "HEAD")
	if err != nil {
		return err
	}

	targetPath, hasWorktree := p.findWorktreePath(ctx, target)
	stashed := false
	if hasWorktree && targetPath != sourcePath {
		dirty, err := p.GW.IsDirty(ctx, targetPath)
		if err != nil {
			return err
		}
		if dirty {
			label := "worktrunk-merge-" + target
			stashed, err = p.GW.StashPush(ctx, targetPath, label)
			if err != nil {
				return err
			}
			defer func() {
				if stashed {
					_ = p.GW.StashPop(ctx, targetPath, label)
				}
			}()
		}
	}

	return p.GW.FastForward(ctx, p.RepoPath, target, tip)
}

func (p *Pipeline) findWorktreePath(ctx context.Context, branch string) (string, bool) {
	worktrees, err := p.GW.ListWorktrees(ctx, p.RepoPath)
	if err != nil {
		return "", false
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt.Path, true
		}
	}
	return "", false
}

// classifyForRemoval reports whether branch's tree equals target's,
// which makes forced (-D) branch deletion safe even when git's own
// ancestry check would refuse -d (e.g. after a squash merge changed
// the commit graph but not the tree).
func (p *Pipeline) classifyForRemoval(ctx context.Context, branch, target string) (bool, error) {
	treesEqual, err := p.GW.TreeEqual(ctx, p.RepoPath, branch, target)
	if err != nil {
		return false, err
	}
	return treesEqual, nil
}

// removeMergedWorktree spawns the background worktree + branch removal
// job (spec §4.6 step 9), reusing the same removal machinery as the
// standalone `remove` pipeline.
func (p *Pipeline) removeMergedWorktree(sourcePath, branch string, safeToForceDelete bool) {
	r := &Remover{Pipeline: p}
	r.spawnRemoval(sourcePath, branch, removalOptions{
		ForceDelete: safeToForceDelete,
		LogSuffix:   "remove",
	})
}
