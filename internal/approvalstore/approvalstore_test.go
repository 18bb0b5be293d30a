package approvalstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

func TestApproveThenIsApproved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s := New(path)
	ctx := context.Background()

	ok, err := s.IsApproved("github.com/acme/repo", "npm ci")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Approve(ctx, "github.com/acme/repo", "npm ci"))

	ok, err = s.IsApproved("github.com/acme/repo", "npm ci")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApproveIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Approve(ctx, "p", "cmd"))
	require.NoError(t, s.Approve(ctx, "p", "cmd"))

	ok, err := s.IsApproved("p", "cmd")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearRemovesOnlyOneProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Approve(ctx, "p1", "cmd"))
	require.NoError(t, s.Approve(ctx, "p2", "cmd"))
	require.NoError(t, s.Clear(ctx, "p1"))

	ok, err := s.IsApproved("p1", "cmd")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsApproved("p2", "cmd")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearAllRemovesEveryProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Approve(ctx, "p1", "cmd"))
	require.NoError(t, s.Approve(ctx, "p2", "cmd"))
	require.NoError(t, s.ClearAll(ctx))

	ok, err := s.IsApproved("p1", "cmd")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.IsApproved("p2", "cmd")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApprovePreservesOtherUserConfigFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`worktree-path = "../{{ repo }}-{{ branch }}"`+"\n"), 0o644))

	s := New(path)
	require.NoError(t, s.Approve(context.Background(), "p", "cmd"))

	cfg, err := wtconfig.LoadUser(path)
	require.NoError(t, err)
	assert.Equal(t, "../{{ repo }}-{{ branch }}", cfg.WorktreePath)
	assert.ElementsMatch(t, []string{"cmd"}, cfg.Projects["p"].ApprovedCommands)
}
