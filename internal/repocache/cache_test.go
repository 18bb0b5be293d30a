package repocache

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/gitgw"
)

// initTestRepo creates a real git repository with one commit, mirroring
// the teacher's branch_sync_test.go setup.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-b", "main")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test"), 0o644))
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestMergeBaseKeyIsOrderIndependent(t *testing.T) {
	dir := initTestRepo(t)
	cmd := exec.Command("git", "checkout", "-b", "feature")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644))
	for _, args := range [][]string{{"add", "."}, {"commit", "-m", "feature work"}} {
		c := exec.Command("git", args...)
		c.Dir = dir
		require.NoError(t, c.Run())
	}

	gw := gitgw.New()
	c := New(gw, dir)
	ctx := context.Background()

	a, err := c.MergeBase(ctx, "main", "feature")
	require.NoError(t, err)
	b, err := c.MergeBase(ctx, "feature", "main")
	require.NoError(t, err)
	require.Equal(t, a, b)

	c.keyedMu.Lock()
	defer c.keyedMu.Unlock()
	require.Len(t, c.mergeBase, 1, "both call orders must hit the same cache entry")
}

func TestProjectIdentifierFallsBackToRootWithoutRemote(t *testing.T) {
	dir := initTestRepo(t)
	gw := gitgw.New()
	c := New(gw, dir)

	require.Equal(t, dir, c.ProjectIdentifier(context.Background()))
}

func TestProjectIdentifierUsesNormalizedRemote(t *testing.T) {
	dir := initTestRepo(t)
	cmd := exec.Command("git", "remote", "add", "origin", "git@github.com:acme/repo.git")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	gw := gitgw.New()
	c := New(gw, dir)
	require.Equal(t, "github.com/acme/repo", c.ProjectIdentifier(context.Background()))
}

func TestCurrentBranchCachedPerPath(t *testing.T) {
	dir := initTestRepo(t)
	gw := gitgw.New()
	c := New(gw, dir)
	ctx := context.Background()

	branch, detached, err := c.CurrentBranch(ctx, dir)
	require.NoError(t, err)
	require.False(t, detached)
	require.Equal(t, "main", branch)

	c.keyedMu.Lock()
	_, ok := c.curBranch[dir]
	c.keyedMu.Unlock()
	require.True(t, ok)
}
