package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRemoveTargetsDefaultsToCurrentWorktree(t *testing.T) {
	dir := initRepo(t)
	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := resolveRemoveTargets(cmd, app, nil)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "main", targets[0].Branch)
	assert.Equal(t, dir, targets[0].Path)
}

func TestResolveRemoveTargetsMatchesArgsByBranchOrPath(t *testing.T) {
	dir := initRepo(t)
	wtPath := filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, dir, "worktree", "add", "-b", "feature", wtPath)

	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := resolveRemoveTargets(cmd, app, []string{"feature"})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "feature", targets[0].Branch)
	assert.Equal(t, wtPath, targets[0].Path)

	targets, err = resolveRemoveTargets(cmd, app, []string{wtPath})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "feature", targets[0].Branch)
}

func TestResolveRemoveTargetsFallsBackToLiteralArg(t *testing.T) {
	dir := initRepo(t)
	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := resolveRemoveTargets(cmd, app, []string{"unknown-branch"})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "unknown-branch", targets[0].Branch)
	assert.Equal(t, "unknown-branch", targets[0].Path)
}

func TestResolveRemoveTargetsMultipleArgs(t *testing.T) {
	dir := initRepo(t)
	wtPath := filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, dir, "worktree", "add", "-b", "feature", wtPath)

	app := newTestApp(t, dir, dir)
	cmd := testCommand(t)

	targets, err := resolveRemoveTargets(cmd, app, []string{"feature", "other"})
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "feature", targets[0].Branch)
	assert.Equal(t, "other", targets[1].Branch)
}
