package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/approvalstore"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
	"github.com/worktrunk/worktrunk/internal/wterr"
)

func newRunner(t *testing.T, cfg wtconfig.Merged) (*Runner, string) {
	t.Helper()
	gitCommon := t.TempDir()
	store := approvalstore.New(filepath.Join(t.TempDir(), "config.toml"))
	return &Runner{
		Config:       cfg,
		Template:     &template.Engine{},
		Approvals:    store,
		ProjectID:    "test-project",
		GitCommonDir: gitCommon,
	}, gitCommon
}

func TestRunUserHookBlockingSucceedsWithoutApproval(t *testing.T) {
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PostCreate: wtconfig.HookSet{{Name: "", Command: "true"}},
	}}}
	r, _ := newRunner(t, cfg)

	results, err := r.Run(context.Background(), wtconfig.HookPostCreate, template.Context{"branch": "feature"}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.NoError(t, results[0].Err)
}

func TestRunNoVerifySkipsEverything(t *testing.T) {
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PostCreate: wtconfig.HookSet{{Name: "", Command: "false"}},
	}}}
	r, _ := newRunner(t, cfg)

	results, err := r.Run(context.Background(), wtconfig.HookPostCreate, template.Context{"branch": "feature"}, Options{NoVerify: true})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestRunPreCommitFailFastReturnsHookFailed(t *testing.T) {
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PreCommit: wtconfig.HookSet{{Name: "", Command: "false"}},
	}}}
	r, _ := newRunner(t, cfg)

	_, err := r.Run(context.Background(), wtconfig.HookPreCommit, template.Context{"branch": "feature"}, Options{})
	require.Error(t, err)
}

func TestRunPostCreateNonFailFastContinuesPastFailure(t *testing.T) {
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PostCreate: wtconfig.HookSet{
			{Name: "a", Command: "false"},
			{Name: "b", Command: "true"},
		},
	}}}
	r, _ := newRunner(t, cfg)

	results, err := r.Run(context.Background(), wtconfig.HookPostCreate, template.Context{"branch": "feature"}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestRunProjectHookDeniedWithoutApproval(t *testing.T) {
	cfg := wtconfig.Merged{Project: wtconfig.ProjectConfig{Hooks: wtconfig.HookSections{
		PostMerge: wtconfig.HookSet{{Name: "", Command: "true"}},
	}}}
	r, _ := newRunner(t, cfg)

	_, err := r.Run(context.Background(), wtconfig.HookPostMerge, template.Context{"branch": "feature"}, Options{})
	var denied wterr.ApprovalDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "true", denied.Command)

	ok, err := r.Approvals.IsApproved("test-project", "true")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunProjectHookApprovedWithYesFlag(t *testing.T) {
	cfg := wtconfig.Merged{Project: wtconfig.ProjectConfig{Hooks: wtconfig.HookSections{
		PostMerge: wtconfig.HookSet{{Name: "", Command: "true"}},
	}}}
	r, _ := newRunner(t, cfg)

	results, err := r.Run(context.Background(), wtconfig.HookPostMerge, template.Context{"branch": "feature"}, Options{Yes: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)

	ok, err := r.Approvals.IsApproved("test-project", "true")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunProjectHooksPromptOnceForWholeBatch(t *testing.T) {
	cfg := wtconfig.Merged{Project: wtconfig.ProjectConfig{Hooks: wtconfig.HookSections{
		PostMerge: wtconfig.HookSet{
			{Name: "a", Command: "true"},
			{Name: "b", Command: "echo hi"},
		},
	}}}
	r, _ := newRunner(t, cfg)

	var prompts int
	var seen []string
	r.Prompt = func(commands []string) (bool, error) {
		prompts++
		seen = commands
		return true, nil
	}

	results, err := r.Run(context.Background(), wtconfig.HookPostMerge, template.Context{"branch": "feature"}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped)
	assert.False(t, results[1].Skipped)
	assert.Equal(t, 1, prompts)
	assert.ElementsMatch(t, []string{"true", "echo hi"}, seen)

	for _, command := range seen {
		ok, err := r.Approvals.IsApproved("test-project", command)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRunProjectHooksRejectedBatchAbortsRun(t *testing.T) {
	cfg := wtconfig.Merged{Project: wtconfig.ProjectConfig{Hooks: wtconfig.HookSections{
		PostMerge: wtconfig.HookSet{
			{Name: "a", Command: "true"},
			{Name: "b", Command: "echo hi"},
		},
	}}}
	r, _ := newRunner(t, cfg)
	r.Prompt = func(commands []string) (bool, error) { return false, nil }

	_, err := r.Run(context.Background(), wtconfig.HookPostMerge, template.Context{"branch": "feature"}, Options{})
	require.Error(t, err)
}

func TestRunBackgroundHookWritesLogFile(t *testing.T) {
	cfg := wtconfig.Merged{User: wtconfig.UserConfig{Hooks: wtconfig.HookSections{
		PostStart: wtconfig.HookSet{{Name: "", Command: "echo hello"}},
	}}}
	r, gitCommon := newRunner(t, cfg)

	results, err := r.Run(context.Background(), wtconfig.HookPostStart, template.Context{"branch": "feature"}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].LogPath)
	assert.Equal(t, filepath.Join(gitCommon, "wt-logs", "feature-user-post-start.log"), results[0].LogPath)

	require.Eventually(t, func() bool {
		b, err := os.ReadFile(results[0].LogPath)
		return err == nil && len(b) > 0
	}, 2*time.Second, 20*time.Millisecond)
}
