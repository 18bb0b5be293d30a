// Package cli wires worktrunk's cobra command tree to the
// internal/lifecycle, internal/status, and internal/render packages.
// Command code never branches on output mode itself (spec §9) and
// never constructs a gitgw.Gateway/wtconfig.Merged/etc. by hand —
// every command calls bootstrap once, at the top of its RunE, to get
// a ready *App for its repository.
//
// Grounded on the teacher's internal/cmd/root.go for the
// package-level rootCmd + PersistentFlags + init() registration
// shape; the bootstrap-an-App-per-invocation step has no teacher
// analogue (catnip's CLI only launches a long-running server/TUI, it
// never resolves a repo-scoped pipeline bundle per invocation) and
// comes from spec.md §3/§4's "per-invocation memoization" model.
package cli

import (
	"context"
	"os"

	"github.com/worktrunk/worktrunk/internal/approvalstore"
	"github.com/worktrunk/worktrunk/internal/envkeys"
	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/repocache"
	"github.com/worktrunk/worktrunk/internal/shellchannel"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wterr"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// globalFlags holds the process-wide flags every subcommand inherits
// (spec §6: "-C PATH, --config PATH, -v/-vv, --internal=<shell>").
type globalFlags struct {
	chdir         string
	configPath    string
	verbosity     int
	internalShell string
	yes           bool
	noVerify      bool
}

// App bundles everything a command handler needs for one repository,
// resolved once per invocation (spec §9: "the repo cache handle" is
// one of the three unavoidable process-wide items, scoped here to one
// invocation rather than the whole process so tests can construct
// their own).
type App struct {
	GW        *gitgw.Gateway
	Cache     *repocache.Cache
	Pipeline  *lifecycle.Pipeline
	Config    wtconfig.Merged
	Flags     globalFlags
	Approvals *approvalstore.Store
}

func (a *App) approvalStore() *approvalstore.Store {
	return a.Approvals
}

// hooksOptions builds the Options every direct `wt hook` invocation
// runs with, honoring the same --yes/--no-verify flags the lifecycle
// pipelines do.
func hooksOptions() hooks.Options {
	return hooks.Options{NoVerify: flags.noVerify, Yes: flags.yes}
}

// bootstrap resolves the repo root from cwd or -C, loads config,
// constructs the gateway/cache/hook-runner/pipeline bundle, and
// detects the directive channel. Every subcommand's RunE starts here.
func bootstrap(flags globalFlags) (*App, error) {
	ctx := context.Background()

	cwd := flags.chdir
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	gw := gitgw.New()
	repoRoot, err := gw.TopLevel(ctx, cwd)
	if err != nil {
		return nil, wterr.NotInRepo{Path: cwd}
	}

	cache := repocache.New(gw, repoRoot)

	userPath := flags.configPath
	if userPath == "" {
		userPath = wtconfig.UserConfigPath()
	}
	if v := os.Getenv("WORKTRUNK_CONFIG_PATH"); v != "" && flags.configPath == "" {
		userPath = v
	}
	projectPath := wtconfig.ProjectConfigPath(repoRoot)

	cfg, err := wtconfig.Load(userPath, projectPath)
	if err != nil {
		return nil, err
	}
	wtconfig.ApplyEnvOverrides(&cfg.User, os.Environ())

	gitCommonDir, err := cache.GitCommonDir(ctx)
	if err != nil {
		return nil, err
	}
	defaultBranch, err := cache.DefaultBranch(ctx, repocache.DefaultBranchOptions{AllowNetwork: true})
	if err != nil {
		return nil, err
	}
	projectID := cache.ProjectIdentifier(ctx)

	store := approvalstore.New(userPath)
	runner := &hooks.Runner{
		Config:       cfg,
		Template:     &template.Engine{},
		Approvals:    store,
		ProjectID:    projectID,
		GitCommonDir: gitCommonDir,
		Prompt:       promptApproval(flags.yes),
	}

	pipeline := &lifecycle.Pipeline{
		GW:            gw,
		Cache:         cache,
		Template:      &template.Engine{},
		Hooks:         runner,
		Config:        cfg,
		RepoPath:      repoRoot,
		GitCommonDir:  gitCommonDir,
		DefaultBranch: defaultBranch,
		ProjectID:     projectID,
		CurrentDir:    cwd,
	}

	return &App{GW: gw, Cache: cache, Pipeline: pipeline, Config: cfg, Flags: flags, Approvals: store}, nil
}

// directiveWriter builds the shell directive channel for the current
// invocation (spec §4.8), honoring --internal=<shell> and
// WORKTRUNK_DIRECTIVE_FILE.
func directiveWriter(flags globalFlags) *shellchannel.Writer {
	shell := flags.internalShell
	if shell == "" {
		shell = os.Getenv(envkeys.Shell)
	}
	return shellchannel.Detect(shell)
}
