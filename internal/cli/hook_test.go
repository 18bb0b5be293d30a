package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/approvalstore"
	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

func newHookTestApp(t *testing.T, dir string, cfg wtconfig.Merged) *App {
	t.Helper()
	gw := gitgw.New()
	store := approvalstore.New(filepath.Join(t.TempDir(), "config.toml"))
	runner := &hooks.Runner{
		Config:       cfg,
		Template:     &template.Engine{},
		Approvals:    store,
		ProjectID:    "test-project",
		GitCommonDir: filepath.Join(dir, ".git"),
		Prompt:       promptApproval(false),
	}
	return &App{
		GW:        gw,
		Approvals: store,
		Pipeline: &lifecycle.Pipeline{
			GW:            gw,
			Template:      &template.Engine{},
			Hooks:         runner,
			Config:        cfg,
			RepoPath:      dir,
			GitCommonDir:  filepath.Join(dir, ".git"),
			DefaultBranch: "main",
			ProjectID:     "test-project",
			CurrentDir:    dir,
		},
	}
}

func TestHookCommandRunsOnlyTheNamedUserHook(t *testing.T) {
	dir := initRepo(t)
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PostCreate: wtconfig.HookSet{
			{Name: "lint", Command: "true"},
			{Name: "build", Command: "true"},
		},
	}}}
	app := newHookTestApp(t, dir, cfg)
	cmd := testCommand(t)

	results, err := app.Pipeline.Hooks.RunFiltered(
		cmd.Context(),
		wtconfig.HookPostCreate,
		app.Pipeline.Vars("main", dir, "", ""),
		hooks.Options{},
		nil,
		"lint",
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "lint", results[0].Name)
}

func TestHookVarsMergesExtraVariables(t *testing.T) {
	dir := initRepo(t)
	app := newHookTestApp(t, dir, wtconfig.Merged{})

	vars := app.Pipeline.Vars("main", dir, "", "")
	vars["custom"] = "value"

	assert.Equal(t, "main", vars["branch"])
	assert.Equal(t, "value", vars["custom"])
}
