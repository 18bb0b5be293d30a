package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/render"
)

var stepStage string

var stepCmd = &cobra.Command{
	Use:       "step {commit|squash|rebase|push|copy-ignored|for-each}",
	Short:     "Run one lifecycle pipeline step standalone, without the rest of `wt merge`",
	Args:      cobra.MinimumNArgs(1),
	ValidArgs: []string{"commit", "squash", "rebase", "push", "copy-ignored", "for-each"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}

		branch, _, err := app.GW.CurrentBranch(cmd.Context(), app.Pipeline.CurrentDir)
		if err != nil {
			return err
		}
		target := app.Pipeline.DefaultBranch

		switch args[0] {
		case "commit":
			policy := gitgw.StagePolicy(stepStage)
			if policy == "" {
				policy = gitgw.StagePolicy(app.Config.User.Commit.Stage)
			}
			res, err := app.Pipeline.StepCommit(cmd.Context(), app.Pipeline.CurrentDir, branch, target, policy, flags.noVerify)
			if err != nil {
				return err
			}
			if res.Committed {
				render.Success("committed: %s", res.Message)
			} else {
				render.Info("nothing to commit")
			}
			return nil

		case "squash":
			res, err := app.Pipeline.StepSquash(cmd.Context(), app.Pipeline.CurrentDir, branch, target)
			if err != nil {
				return err
			}
			if res.Squashed {
				render.Success("squashed %s (backup at %s)", branch, res.BackupRef)
			} else {
				render.Info("nothing to squash")
			}
			return nil

		case "rebase":
			if err := app.Pipeline.StepRebase(cmd.Context(), target); err != nil {
				return err
			}
			render.Success("rebased %s onto %s", branch, target)
			return nil

		case "push":
			if err := app.Pipeline.StepPush(cmd.Context(), app.Pipeline.CurrentDir, target); err != nil {
				return err
			}
			render.Success("fast-forwarded %s to %s", target, branch)
			return nil

		case "copy-ignored":
			if len(args) < 2 {
				return fmt.Errorf("copy-ignored needs a source worktree argument")
			}
			copied, err := app.Pipeline.StepCopyIgnored(cmd.Context(), args[1], app.Pipeline.CurrentDir)
			if err != nil {
				return err
			}
			render.Success("copied %d ignored file(s) from %s", len(copied), args[1])
			return nil

		case "for-each":
			if len(args) < 2 {
				return fmt.Errorf("for-each needs a command argument")
			}
			results, err := app.Pipeline.StepForEach(cmd.Context(), args[1])
			for _, r := range results {
				if r.Err != nil {
					render.Warning("%s: %s", r.Branch, r.Err)
					continue
				}
				render.Info("%s: %s", r.Branch, r.Output)
			}
			return err

		default:
			return fmt.Errorf("unknown step %q", args[0])
		}
	},
}

func init() {
	f := stepCmd.Flags()
	f.StringVar(&stepStage, "stage", "", "what to stage before committing: all|tracked|none")
	f.Bool("show-prompt", false, "accepted; has no effect (the generator always runs)")
}
