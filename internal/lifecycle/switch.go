package lifecycle

import (
	"context"
	"os"
	"path/filepath"

	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wterr"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// execDirective builds the EXEC directive's command line: the
// requested command plus its arguments, each shell-escaped (spec
// §4.6 step 2/3: "EXEC(command + escaped args)").
func execDirective(command string, args []string) Directive {
	full := command
	for _, a := range args {
		full += " " + template.ShellEscape(a)
	}
	return Directive{Kind: DirectiveExec, Command: full}
}

// SwitchOptions are the `wt switch` flags (spec §4.6 switch).
type SwitchOptions struct {
	Create   bool
	Base     string
	Execute  string
	ExecArgs []string
	Yes      bool
	NoVerify bool
	Clobber  bool
}

// SwitchResult is what the CLI layer needs to render and to hand to
// the directive channel.
type SwitchResult struct {
	Branch       string
	WorktreePath string
	Created      bool
	Directives   []Directive
	Hooks        []hooks.Result
}

// Switch implements spec §4.6's switch algorithm: resolve the token,
// jump to an existing worktree, create one with --create, or fail with
// BranchNotFound.
//
// Grounded on the teacher's internal/services/branch_sync.go for the
// worktree-lookup-then-act shape; token resolution (^/@/-) and the
// create-on-demand branch have no teacher analogue and come from
// spec.md §4.6.
func (p *Pipeline) Switch(ctx context.Context, token string, opts SwitchOptions) (SwitchResult, error) {
	branch, err := p.resolveToken(ctx, token)
	if err != nil {
		return SwitchResult{}, err
	}

	worktrees, err := p.GW.ListWorktrees(ctx, p.RepoPath)
	if err != nil {
		return SwitchResult{}, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return p.switchToExisting(ctx, branch, wt.Path, opts)
		}
	}

	if opts.Create {
		return p.switchByCreating(ctx, branch, opts)
	}

	return SwitchResult{}, wterr.BranchNotFound{Branch: branch, HintText: "use --create to create it"}
}

// resolveToken expands the ^/@/- shorthand tokens (spec §4.6 step 1).
func (p *Pipeline) resolveToken(ctx context.Context, token string) (string, error) {
	switch token {
	case "^":
		return p.DefaultBranch, nil
	case "@":
		branch, detached, err := p.GW.CurrentBranch(ctx, p.RepoPath)
		if err != nil {
			return "", err
		}
		if detached {
			return "", wterr.DetachedHead{Path: p.RepoPath}
		}
		return branch, nil
	case "-":
		prev, ok := p.GW.Config(ctx, p.RepoPath, "worktrunk.previous-branch")
		if !ok || prev == "" {
			return "", wterr.NoPreviousBranch{}
		}
		return prev, nil
	default:
		return token, nil
	}
}

func (p *Pipeline) switchToExisting(ctx context.Context, branch, worktreePath string, opts SwitchOptions) (SwitchResult, error) {
	if err := p.recordPreviousBranch(ctx); err != nil {
		return SwitchResult{}, err
	}

	vars := p.vars(branch, worktreePath, "", "")
	hookResults, _ := p.Hooks.Run(ctx, wtconfig.HookPostSwitch, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes})

	result := SwitchResult{
		Branch:       branch,
		WorktreePath: worktreePath,
		Directives:   []Directive{{Kind: DirectiveCD, Path: worktreePath}},
		Hooks:        hookResults,
	}
	if opts.Execute != "" {
		result.Directives = append(result.Directives, execDirective(opts.Execute, opts.ExecArgs))
	}
	return result, nil
}

func (p *Pipeline) switchByCreating(ctx context.Context, branch string, opts SwitchOptions) (SwitchResult, error) {
	base := opts.Base
	if base == "" {
		base = p.DefaultBranch
	} else if base == "@" {
		var err error
		base, _, err = p.GW.CurrentBranch(ctx, p.RepoPath)
		if err != nil {
			return SwitchResult{}, err
		}
	}

	rendered, err := p.Template.Render(p.Config.User.WorktreePath, p.vars(branch, "", base, ""), false)
	if err != nil {
		return SwitchResult{}, err
	}
	path := rendered
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.RepoPath, path)
	}

	if err := p.ensurePathAvailable(ctx, path, branch, opts.Clobber); err != nil {
		return SwitchResult{}, err
	}

	if err := p.GW.WorktreeAdd(ctx, p.RepoPath, path, branch, base); err != nil {
		return SwitchResult{}, err
	}
	if err := p.recordPreviousBranch(ctx); err != nil {
		return SwitchResult{}, err
	}

	vars := p.vars(branch, path, base, "")
	hookResults, _ := p.Hooks.Run(ctx, wtconfig.HookPostCreate, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes})

	startResults, _ := p.Hooks.Run(ctx, wtconfig.HookPostStart, vars, hooks.Options{NoVerify: opts.NoVerify, Yes: opts.Yes})
	hookResults = append(hookResults, startResults...)

	result := SwitchResult{
		Branch:       branch,
		WorktreePath: path,
		Created:      true,
		Directives:   []Directive{{Kind: DirectiveCD, Path: path}},
		Hooks:        hookResults,
	}
	if opts.Execute != "" {
		result.Directives = append(result.Directives, execDirective(opts.Execute, opts.ExecArgs))
	}
	return result, nil
}

// ensurePathAvailable implements spec §4.6 step 3's occupied-path
// decision tree: an existing worktree for a different branch is always
// a hard failure; a non-worktree directory is removable only with
// --clobber.
func (p *Pipeline) ensurePathAvailable(ctx context.Context, path, branch string, clobber bool) error {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil
	}

	worktrees, err := p.GW.ListWorktrees(ctx, p.RepoPath)
	if err != nil {
		return err
	}
	for _, wt := range worktrees {
		if wt.Path == path {
			if wt.Branch != branch {
				return wterr.PathOccupied{Path: path}
			}
			return nil
		}
	}

	if !clobber {
		return wterr.PathOccupied{Path: path}
	}
	return os.RemoveAll(path)
}

// recordPreviousBranch writes the branch being left behind to
// worktrunk.previous-branch (spec §4.6 step 2/3, §5: "only the single
// foreground CLI invocation writes" worktrunk state keys).
func (p *Pipeline) recordPreviousBranch(ctx context.Context) error {
	current, detached, err := p.GW.CurrentBranch(ctx, p.RepoPath)
	if err != nil {
		return err
	}
	if detached || current == "" {
		return nil
	}
	return p.GW.SetConfig(ctx, p.RepoPath, "worktrunk.previous-branch", current)
}
