package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/render"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

var hookVars []string

var hookCmd = &cobra.Command{
	Use:   "hook <TYPE> [user:|project:][NAME]",
	Short: "Run the hooks registered for TYPE directly, outside any lifecycle pipeline",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}

		hookType := wtconfig.HookType(args[0])

		var sourceFilter *wtconfig.HookSource
		nameFilter := ""
		if len(args) == 2 {
			nameFilter = args[1]
			if rest, ok := strings.CutPrefix(nameFilter, "user:"); ok {
				s := wtconfig.HookSourceUser
				sourceFilter = &s
				nameFilter = rest
			} else if rest, ok := strings.CutPrefix(nameFilter, "project:"); ok {
				s := wtconfig.HookSourceProject
				sourceFilter = &s
				nameFilter = rest
			}
		}

		branch, _, err := app.GW.CurrentBranch(cmd.Context(), app.Pipeline.CurrentDir)
		if err != nil {
			return err
		}
		vars := app.Pipeline.Vars(branch, app.Pipeline.CurrentDir, "", "")
		for _, kv := range hookVars {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--var must be K=V, got %q", kv)
			}
			vars[k] = v
		}

		runner := app.Pipeline.Hooks
		results, err := runner.RunFiltered(cmd.Context(), hookType, vars, hooksOptions(), sourceFilter, nameFilter)
		for _, r := range results {
			if r.Skipped {
				render.Info("skipped %s (%s)", r.Name, r.Source)
				continue
			}
			if r.Err != nil {
				render.Warning("%s: %s", r.Name, r.Err)
				continue
			}
			render.Success("ran %s (%s)", r.Name, r.Source)
		}
		return err
	},
}

var hookApprovalsCmd = &cobra.Command{
	Use:   "approvals {add|clear}",
	Short: "Manage project-scoped hook command approvals",
}

var hookApprovalsGlobal bool

var hookApprovalsAddCmd = &cobra.Command{
	Use:   "add COMMAND...",
	Short: "Approve COMMAND for the current project without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}
		command := strings.Join(args, " ")
		store := app.approvalStore()
		projectID := app.Pipeline.ProjectID
		if err := store.Approve(cmd.Context(), projectID, command); err != nil {
			return err
		}
		render.Success("approved: %s", command)
		return nil
	},
}

var hookApprovalsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget approved hook commands for the current project (or every project with --global)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}
		store := app.approvalStore()
		if hookApprovalsGlobal {
			if err := store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			render.Success("cleared approvals for every project")
			return nil
		}
		if err := store.Clear(cmd.Context(), app.Pipeline.ProjectID); err != nil {
			return err
		}
		render.Success("cleared approvals for this project")
		return nil
	},
}

func init() {
	hookCmd.Flags().StringArrayVar(&hookVars, "var", nil, "extra template variable K=V (repeatable)")

	hookApprovalsClearCmd.Flags().BoolVar(&hookApprovalsGlobal, "global", false, "clear approvals for every project, not just this one")
	hookApprovalsCmd.AddCommand(hookApprovalsAddCmd, hookApprovalsClearCmd)
	hookCmd.AddCommand(hookApprovalsCmd)
}
