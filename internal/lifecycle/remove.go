package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/logx"
	"github.com/worktrunk/worktrunk/internal/safego"
	"github.com/worktrunk/worktrunk/internal/wterr"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// RemoveOptions are the `wt remove` flags (spec §4.6 remove).
type RemoveOptions struct {
	NoDeleteBranch bool
	ForceDelete    bool
	NoBackground   bool
	NoVerify       bool
	Yes            bool
}

// RemoveResult is one target's outcome.
type RemoveResult struct {
	Branch    string
	Path      string
	Directive Directive
	Err       error
}

// Remover runs the `remove` pipeline and the background removal jobs
// merge's own cleanup step reuses.
type Remover struct {
	*Pipeline
}

type removalOptions struct {
	ForceDelete    bool
	NoDeleteBranch bool
	NoBackground   bool
	LogSuffix      string
}

// Remove implements spec §4.6's remove algorithm over one or more
// targets, continuing past a failing target so the rest still run and
// reporting every failure at the end.
//
// Grounded on the teacher's internal/git/worktree_manager.go
// RemoveWorktree for the remove-then-delete-branch shape; the
// clean-check/CD-before-delete/background-job choreography is spec.md
// §4.6's, which the teacher's synchronous remove has no equivalent of.
func (p *Pipeline) Remove(ctx context.Context, targets []RemoveTarget, opts RemoveOptions) ([]RemoveResult, error) {
	r := &Remover{Pipeline: p}
	results := make([]RemoveResult, 0, len(targets))
	var firstDirective Directive
	var failures int

	for _, t := range targets {
		res := RemoveResult{Branch: t.Branch, Path: t.Path}

		dirty, err := p.GW.IsDirty(ctx, t.Path)
		if err != nil {
			res.Err = err
			results = append(results, res)
			failures++
			continue
		}
		if dirty {
			res.Err = wterr.DirtyWorkingTree{Path: t.Path}
			results = append(results, res)
			failures++
			continue
		}

		vars := p.vars(t.Branch, t.Path, "", "")
		if _, err := p.Hooks.Run(ctx, wtconfig.HookPreRemove, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes}); err != nil {
			res.Err = err
			results = append(results, res)
			failures++
			continue
		}

		// The main worktree is never removed; switch it to the default
		// branch instead, the same refuse-and-switch merge.go's Merge
		// applies to its own `isMain` source worktree (spec §8, glossary
		// "Main worktree … never auto-removed").
		if t.Path == p.RepoPath {
			if _, err := p.GW.Run(ctx, t.Path, "checkout", p.DefaultBranch); err != nil {
				res.Err = err
				results = append(results, res)
				failures++
				continue
			}
			results = append(results, res)
			continue
		}

		if t.Path == p.CurrentDir && firstDirective.Kind == DirectiveNone {
			firstDirective = Directive{Kind: DirectiveCD, Path: p.RepoPath}
			res.Directive = firstDirective
		}

		safe, _ := p.classifyForRemoval(ctx, t.Branch, p.DefaultBranch)
		r.spawnRemoval(t.Path, t.Branch, removalOptions{
			ForceDelete:    opts.ForceDelete || safe,
			NoDeleteBranch: opts.NoDeleteBranch,
			NoBackground:   opts.NoBackground,
			LogSuffix:      "remove",
		})

		results = append(results, res)
	}

	if failures > 0 {
		return results, fmt.Errorf("%d of %d removals failed", failures, len(targets))
	}
	return results, nil
}

// RemoveTarget names one `remove` target worktree.
type RemoveTarget struct {
	Branch string
	Path   string
}

// spawnRemoval runs `git worktree remove --force` then deletes the
// branch (spec §4.6 remove step 4 / merge step 9), and runs
// post-remove hooks afterward. The job reports through logx.Logger;
// the `<branch>-<suffix>.log` path it computes appears only in its
// final debug line, and nothing is written to that file.
// Grounded on the teacher's background-job pattern in
// internal/git/worktree_manager.go (spawn, log, don't block the
// foreground CLI).
func (r *Remover) spawnRemoval(worktreePath, branch string, opts removalOptions) {
	jobID := uuid.New().String()
	logName := fmt.Sprintf("%s-%s.log", branch, opts.LogSuffix)
	logPath := filepath.Join(r.GitCommonDir, "wt-logs", logName)

	job := func() {
		ctx := context.Background()

		if err := r.GW.WorktreeRemove(ctx, r.RepoPath, worktreePath, true); err != nil {
			logx.Logger.Error().Err(err).Str("job", jobID).Str("branch", branch).Msg("worktree removal failed")
			return
		}

		if !opts.NoDeleteBranch {
			force := opts.ForceDelete
			if err := r.GW.DeleteBranch(ctx, r.RepoPath, branch, force); err != nil {
				if !force {
					logx.Logger.Warn().Err(err).Str("job", jobID).Str("branch", branch).
						Msg("branch not fully merged, skipped safe delete (use --force-delete)")
				} else {
					logx.Logger.Error().Err(err).Str("job", jobID).Str("branch", branch).Msg("branch delete failed")
				}
			}
		}

		logx.Logger.Debug().Str("job", jobID).Str("log", logPath).Str("branch", branch).Msg("removal complete")

		vars := r.vars(branch, worktreePath, "", "")
		_, _ = r.Hooks.Run(ctx, wtconfig.HookPostRemove, vars, hooks.Options{})
	}

	if opts.NoBackground {
		job()
		return
	}
	safego.Go("remove:"+jobID, job)
}
