package status

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/repocache"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "initial")
	return dir
}

func TestClassifyIsMain(t *testing.T) {
	dir := initRepo(t)
	gw := gitgw.New()
	cache := repocache.New(gw, dir)

	class, err := Classify(context.Background(), gw, cache, dir, "main", "main", false)
	require.NoError(t, err)
	require.Equal(t, ClassIsMain, class)
}

func TestClassifyEmptyWhenNoCommitsAhead(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "branch", "feature")
	gw := gitgw.New()
	cache := repocache.New(gw, dir)

	class, err := Classify(context.Background(), gw, cache, dir, "main", "feature", false)
	require.NoError(t, err)
	require.Equal(t, ClassEmpty, class)
}

func TestClassifyAheadWithNewCommit(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "feature work")

	gw := gitgw.New()
	cache := repocache.New(gw, dir)
	class, err := Classify(context.Background(), gw, cache, dir, "main", "feature", false)
	require.NoError(t, err)
	require.Equal(t, ClassAhead, class)
}

func TestClassifyEmptyWhenDefaultAdvancedPastUnchangedBranch(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "branch", "stale")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g.txt"), []byte("y"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "advance main")

	gw := gitgw.New()
	cache := repocache.New(gw, dir)
	class, err := Classify(context.Background(), gw, cache, dir, "main", "stale", false)
	require.NoError(t, err)
	require.True(t, class.Integrated())
	require.Equal(t, ClassEmpty, class)
}

func TestClassificationIntegrated(t *testing.T) {
	require.True(t, ClassEmpty.Integrated())
	require.True(t, ClassAncestor.Integrated())
	require.False(t, ClassAhead.Integrated())
	require.False(t, ClassWouldConflict.Integrated())
}
