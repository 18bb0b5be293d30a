package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

func TestStepCommitCommitsStagedChanges(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	p := newPipeline(t, dir, wtconfig.Merged{})
	res, err := p.StepCommit(context.Background(), dir, "main", "main", gitgw.StageAll, false)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.NotEmpty(t, res.Message)
}

func TestStepCommitNoOpWhenNothingStaged(t *testing.T) {
	dir := initRepo(t)
	p := newPipeline(t, dir, wtconfig.Merged{})
	res, err := p.StepCommit(context.Background(), dir, "main", "main", gitgw.StageAll, false)
	require.NoError(t, err)
	assert.False(t, res.Committed)
}

func TestStepSquashAndStepRebaseAndStepPush(t *testing.T) {
	dir := initRepo(t)
	wtPath := filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, dir, "worktree", "add", "-b", "feature", wtPath)
	require.NoError(t, os.WriteFile(filepath.Join(wtPath, "a.txt"), []byte("a"), 0o644))
	runGit(t, wtPath, "add", ".")
	runGit(t, wtPath, "commit", "-m", "first")
	require.NoError(t, os.WriteFile(filepath.Join(wtPath, "b.txt"), []byte("b"), 0o644))
	runGit(t, wtPath, "add", ".")
	runGit(t, wtPath, "commit", "-m", "second")

	p := newPipeline(t, dir, wtconfig.Merged{})
	squashRes, err := p.StepSquash(context.Background(), wtPath, "feature", "main")
	require.NoError(t, err)
	assert.True(t, squashRes.Squashed)
	assert.NotEmpty(t, squashRes.BackupRef)

	require.NoError(t, p.StepRebase(context.Background(), wtPath, "main"))
	require.NoError(t, p.StepPush(context.Background(), wtPath, "main"))

	mainTip := runGit(t, dir, "rev-parse", "refs/heads/main")
	featureTip := runGit(t, wtPath, "rev-parse", "HEAD")
	assert.Equal(t, featureTip, mainTip)
}

func TestStepCopyIgnoredCopiesUntrackedIgnoredFiles(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".env\n"), 0o644))
	runGit(t, dir, "add", ".gitignore")
	runGit(t, dir, "commit", "-m", "add gitignore")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0o600))

	otherWtPath := filepath.Join(t.TempDir(), "other-wt")
	runGit(t, dir, "worktree", "add", "-b", "other", otherWtPath)

	p := newPipeline(t, dir, wtconfig.Merged{})
	copied, err := p.StepCopyIgnored(context.Background(), dir, otherWtPath)
	require.NoError(t, err)
	require.Contains(t, copied, ".env")

	b, err := os.ReadFile(filepath.Join(otherWtPath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "SECRET=1", string(b))
}

func TestStepForEachRunsInEveryWorktreeAndReportsFailures(t *testing.T) {
	dir := initRepo(t)
	wtPath := filepath.Join(t.TempDir(), "feature-wt")
	runGit(t, dir, "worktree", "add", "-b", "feature", wtPath)

	p := newPipeline(t, dir, wtconfig.Merged{})
	results, err := p.StepForEach(context.Background(), "pwd > out.txt")
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = p.StepForEach(context.Background(), "exit 1")
	require.Error(t, err)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
