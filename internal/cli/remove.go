package cli

import (
	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/render"
)

var removeOpts lifecycle.RemoveOptions

var removeCmd = &cobra.Command{
	Use:   "remove [WORKTREES…]",
	Short: "Remove one or more worktrees (and their branches, if merged)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}

		targets, err := resolveRemoveTargets(cmd, app, args)
		if err != nil {
			return err
		}

		opts := removeOpts
		opts.Yes = flags.yes
		opts.NoVerify = flags.noVerify

		results, err := app.Pipeline.Remove(cmd.Context(), targets, opts)
		for _, r := range results {
			if r.Err != nil {
				render.Warning("%s: %s", r.Branch, r.Err)
				continue
			}
			render.Success("removed %s", r.Branch)
			render.EmitDirective(r.Directive)
		}
		return err
	},
}

// resolveRemoveTargets turns branch names or worktree paths named on
// the command line into RemoveTargets, defaulting to the invocation's
// own worktree when none are given.
func resolveRemoveTargets(cmd *cobra.Command, app *App, args []string) ([]lifecycle.RemoveTarget, error) {
	worktrees, err := app.GW.ListWorktrees(cmd.Context(), app.Pipeline.RepoPath)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		branch, _, err := app.GW.CurrentBranch(cmd.Context(), app.Pipeline.CurrentDir)
		if err != nil {
			return nil, err
		}
		return []lifecycle.RemoveTarget{{Branch: branch, Path: app.Pipeline.CurrentDir}}, nil
	}

	targets := make([]lifecycle.RemoveTarget, 0, len(args))
	for _, a := range args {
		found := false
		for _, wt := range worktrees {
			if wt.Branch == a || wt.Path == a {
				targets = append(targets, lifecycle.RemoveTarget{Branch: wt.Branch, Path: wt.Path})
				found = true
				break
			}
		}
		if !found {
			targets = append(targets, lifecycle.RemoveTarget{Branch: a, Path: a})
		}
	}
	return targets, nil
}

func init() {
	f := removeCmd.Flags()
	f.BoolVar(&removeOpts.NoDeleteBranch, "no-delete-branch", false, "remove the worktree but keep the branch")
	f.BoolVar(&removeOpts.ForceDelete, "force-delete", false, "force branch deletion (git branch -D) even if unmerged")
	f.BoolVar(&removeOpts.NoBackground, "no-background", false, "run the removal synchronously instead of backgrounding it")
}
