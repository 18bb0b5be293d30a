package cli

import (
	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/render"
	"github.com/worktrunk/worktrunk/internal/status"
)

var listOpts struct {
	format      string
	branches    bool
	remotes     bool
	full        bool
	progressive bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List worktrees and their status vs. the default branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}

		d := app.Config.User.List
		branches := listOpts.branches || d.Branches
		remotes := listOpts.remotes || d.Remotes
		full := listOpts.full || d.Full

		targets, err := listTargets(cmd, app, branches, remotes)
		if err != nil {
			return err
		}

		engine := &status.Engine{
			GW:            app.GW,
			Cache:         app.Cache,
			RepoPath:      app.Pipeline.RepoPath,
			DefaultBranch: app.Pipeline.DefaultBranch,
		}

		format := listOpts.format
		if format == "" {
			format = "table"
		}

		var onUpdate status.OnUpdate
		if listOpts.progressive && format == "table" {
			onUpdate = func(row int, rec status.Record) {
				render.Progress("%s: %s", rec.Branch, rec.Classification)
			}
		}

		records := engine.Run(cmd.Context(), targets, onUpdate)
		if !full {
			records = dropIntegratedWithoutWorktree(records)
		}

		switch format {
		case "json":
			return render.Data(records)
		default:
			render.Table(records)
			return nil
		}
	},
}

// listTargets builds the status engine's target set: every worktree,
// plus (when requested) local branches with no worktree and remote
// branches with no local counterpart (spec §6 [list] branches/remotes).
func listTargets(cmd *cobra.Command, app *App, branches, remotes bool) ([]status.Target, error) {
	ctx := cmd.Context()
	worktrees, err := app.GW.ListWorktrees(ctx, app.Pipeline.RepoPath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(worktrees))
	targets := make([]status.Target, 0, len(worktrees))
	for _, wt := range worktrees {
		if wt.Branch == "" {
			continue // detached worktrees have no branch identity to list by
		}
		seen[wt.Branch] = true
		targets = append(targets, status.Target{Branch: wt.Branch, WorktreePath: wt.Path, HasUpstream: true})
	}

	if branches {
		locals, err := app.GW.LocalBranches(ctx, app.Pipeline.RepoPath)
		if err != nil {
			return nil, err
		}
		for _, b := range locals {
			if !seen[b] {
				seen[b] = true
				targets = append(targets, status.Target{Branch: b})
			}
		}
	}

	if remotes {
		names, err := app.GW.Remotes(ctx, app.Pipeline.RepoPath)
		if err != nil {
			return nil, err
		}
		for _, remote := range names {
			branch, err := app.GW.LsRemoteSymref(ctx, app.Pipeline.RepoPath, remote)
			if err != nil || branch == "" || seen[branch] {
				continue
			}
			seen[branch] = true
			targets = append(targets, status.Target{Branch: branch, HasUpstream: true})
		}
	}

	return targets, nil
}

// dropIntegratedWithoutWorktree hides rows for fully-integrated
// branches that no longer have a worktree, matching `wt list`'s
// default (non-`--full`) view.
func dropIntegratedWithoutWorktree(records []status.Record) []status.Record {
	out := make([]status.Record, 0, len(records))
	for _, r := range records {
		if r.WorktreePath == "" && r.Classification.Integrated() {
			continue
		}
		out = append(out, r)
	}
	return out
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listOpts.format, "format", "table", "output format: table|json")
	f.BoolVar(&listOpts.branches, "branches", false, "include local branches with no worktree")
	f.BoolVar(&listOpts.remotes, "remotes", false, "include remote branches with no local counterpart")
	f.BoolVar(&listOpts.full, "full", false, "include fully-integrated branches with no worktree")
	f.BoolVar(&listOpts.progressive, "progressive", false, "render the table incrementally as slow-tier data arrives")
}
