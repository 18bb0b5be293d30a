package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/status"
)

func TestListTargetsIncludesEveryWorktree(t *testing.T) {
	dir := initRepo(t)
	wtPath := filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, dir, "worktree", "add", "-b", "feature", wtPath)

	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := listTargets(cmd, app, false, false)
	require.NoError(t, err)

	branches := make(map[string]bool)
	for _, tg := range targets {
		branches[tg.Branch] = true
	}
	assert.True(t, branches["main"])
	assert.True(t, branches["feature"])
}

func TestListTargetsBranchesAddsLocalBranchesWithoutWorktree(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "branch", "idle")

	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	without, err := listTargets(cmd, app, false, false)
	require.NoError(t, err)
	for _, tg := range without {
		assert.NotEqual(t, "idle", tg.Branch)
	}

	with, err := listTargets(cmd, app, true, false)
	require.NoError(t, err)
	found := false
	for _, tg := range with {
		if tg.Branch == "idle" {
			found = true
			assert.Empty(t, tg.WorktreePath)
		}
	}
	assert.True(t, found)
}

func TestListTargetsDeduplicatesWorktreeBranch(t *testing.T) {
	dir := initRepo(t)
	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := listTargets(cmd, app, true, false)
	require.NoError(t, err)

	count := 0
	for _, tg := range targets {
		if tg.Branch == "main" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDropIntegratedWithoutWorktreeKeepsRowsWithAWorktree(t *testing.T) {
	records := []status.Record{
		{Branch: "main", WorktreePath: "/repo", Classification: status.ClassIsMain},
		{Branch: "merged", Classification: status.ClassAncestor},
		{Branch: "active", WorktreePath: "/repo-active", Classification: status.ClassAhead},
	}

	out := dropIntegratedWithoutWorktree(records)

	branches := make(map[string]bool)
	for _, r := range out {
		branches[r.Branch] = true
	}
	assert.True(t, branches["main"])
	assert.True(t, branches["active"])
	assert.False(t, branches["merged"])
}
