package cli

import (
	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/render"
)

var switchOpts lifecycle.SwitchOptions

var switchCmd = &cobra.Command{
	Use:   "switch BRANCH [-- ARGS…]",
	Short: "Jump to (or create) a worktree for BRANCH",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}
		opts := switchOpts
		opts.Yes = flags.yes
		opts.NoVerify = flags.noVerify
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			opts.ExecArgs = args[dash:]
		}

		result, err := app.Pipeline.Switch(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}

		if result.Created {
			render.Success("created worktree for %s at %s", result.Branch, result.WorktreePath)
		}
		for _, d := range result.Directives {
			render.EmitDirective(d)
		}
		return nil
	},
}

func init() {
	f := switchCmd.Flags()
	f.BoolVar(&switchOpts.Create, "create", false, "create the worktree if it doesn't exist")
	f.StringVar(&switchOpts.Base, "base", "", "base branch/commit for --create (default: repo default branch)")
	f.StringVar(&switchOpts.Execute, "execute", "", "cd into the worktree, then run this command there")
	f.BoolVar(&switchOpts.Clobber, "clobber", false, "remove a plain directory occupying the target path")
}
