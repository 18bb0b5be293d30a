// Package lifecycle implements the three worktree lifecycle pipelines
// (spec §4.6): switch, merge, remove. Each pipeline is a totally
// ordered sequence of steps (spec §5: "within one lifecycle pipeline,
// steps are totally ordered as listed in §4.6") that aborts on the
// first fatal error and reports a Directive for the calling shell
// wrapper to act on.
//
// Grounded on the teacher's internal/git/worktree_manager.go for the
// individual git steps (worktree add/remove, branch deletion) and
// internal/services/git.go for orchestrating several such steps into
// one higher-level operation; the pipeline step ORDER and the
// hook/approval/backup-ref interleaving come from spec.md §4.6, which
// has no teacher analogue (catnip's worktree creation has no merge or
// hook concept at all).
package lifecycle

import (
	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/repocache"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// DirectiveKind distinguishes the shell-directive channel's verbs
// (spec §4.8): change directory, execute a command, or emit raw shell
// code verbatim (used by `config shell init`).
type DirectiveKind int

const (
	DirectiveNone DirectiveKind = iota
	DirectiveCD
	DirectiveExec
	DirectiveRaw
)

// Directive is what a pipeline asks the shell wrapper to do once it
// completes. The actual encoding (file-based vs. stream-based) is
// internal/shellchannel's concern, not this package's.
type Directive struct {
	Kind    DirectiveKind
	Path    string
	Command string
	Raw     string
}

// Pipeline bundles every dependency a lifecycle operation needs. One
// Pipeline is constructed per CLI invocation, scoped to one repository.
type Pipeline struct {
	GW            *gitgw.Gateway
	Cache         *repocache.Cache
	Template      *template.Engine
	Hooks         *hooks.Runner
	Config        wtconfig.Merged
	RepoPath      string // primary worktree root
	GitCommonDir  string
	DefaultBranch string
	ProjectID     string
	CurrentDir    string // cwd the CLI process was invoked from
}

// Vars exposes the pipeline's template context builder for `wt hook`,
// which invokes a hook type directly outside any lifecycle pipeline
// but still needs the same variable vocabulary (spec §4.3).
func (p *Pipeline) Vars(branch, worktreePath, base, target string) template.Context {
	return p.vars(branch, worktreePath, base, target)
}

// vars builds the template context shared by every hook invocation and
// worktree-path render in a pipeline step (spec §4.3's Context fields).
func (p *Pipeline) vars(branch, worktreePath, base, target string) template.Context {
	ctx := template.Context{
		"repo":                  repoName(p.RepoPath),
		"repo_path":             p.RepoPath,
		"branch":                branch,
		"worktree_name":         worktreeName(worktreePath),
		"worktree_path":         worktreePath,
		"primary_worktree_path": p.RepoPath,
		"default_branch":        p.DefaultBranch,
	}
	if base != "" {
		ctx["base"] = base
	}
	if target != "" {
		ctx["target"] = target
	}
	return ctx
}

func repoName(repoPath string) string {
	for i := len(repoPath) - 1; i >= 0; i-- {
		if repoPath[i] == '/' {
			return repoPath[i+1:]
		}
	}
	return repoPath
}

func worktreeName(worktreePath string) string {
	if worktreePath == "" {
		return ""
	}
	return repoName(worktreePath)
}
