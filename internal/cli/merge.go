package cli

import (
	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/render"
)

var (
	mergeOpts  lifecycle.MergeOptions
	mergeStage string
)

var mergeCmd = &cobra.Command{
	Use:   "merge [TARGET]",
	Short: "Squash, rebase, and fast-forward the current worktree's branch into TARGET",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}

		branch, _, err := app.GW.CurrentBranch(cmd.Context(), app.Pipeline.CurrentDir)
		if err != nil {
			return err
		}

		opts := mergeOpts
		opts.Yes = flags.yes
		opts.NoVerify = flags.noVerify
		if mergeStage != "" {
			opts.Stage = gitgw.StagePolicy(mergeStage)
		}
		applyMergeDefaults(&opts, app)

		result, err := app.Pipeline.Merge(cmd.Context(), app.Pipeline.CurrentDir, branch, target, opts)
		if err != nil {
			return err
		}

		if result.Squashed {
			render.Success("squashed %s (backup at %s)", result.Branch, result.BackupRef)
		}
		if result.Removed {
			render.Success("merged %s into %s and removed the worktree", result.Branch, result.Target)
		} else if result.MainSwitched {
			render.Success("merged into %s, checked out the default branch", result.Target)
		}
		render.EmitDirective(result.Directive)
		return nil
	},
}

// applyMergeDefaults fills in the [merge] config-file defaults (spec
// §6: squash/commit/rebase/remove/verify, "booleans, all default
// true") for any flag the user didn't pass explicitly.
func applyMergeDefaults(opts *lifecycle.MergeOptions, app *App) {
	d := app.Config.User.Merge
	if !d.Squash {
		opts.NoSquash = true
	}
	if !d.Commit {
		opts.NoCommit = true
	}
	if !d.Rebase {
		opts.NoRebase = true
	}
	if !d.Remove {
		opts.NoRemove = true
	}
	if !d.Verify {
		opts.NoVerify = true
	}
}

func init() {
	f := mergeCmd.Flags()
	f.BoolVar(&mergeOpts.NoSquash, "no-squash", false, "don't squash commits before merging")
	f.BoolVar(&mergeOpts.NoCommit, "no-commit", false, "don't auto-commit uncommitted changes")
	f.BoolVar(&mergeOpts.NoRebase, "no-rebase", false, "don't rebase onto the target before fast-forwarding")
	f.BoolVar(&mergeOpts.NoRemove, "no-remove", false, "don't remove the worktree after merging")
	f.StringVar(&mergeStage, "stage", "", "what to stage before auto-commit: all|tracked|none")
}
