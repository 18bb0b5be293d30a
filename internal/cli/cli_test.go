package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
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

// newTestApp builds an App directly (skipping bootstrap's config-file
// and directive-channel resolution) against a real repo, mirroring
// internal/lifecycle's own test fixtures.
func newTestApp(t *testing.T, repoDir, currentDir string) *App {
	t.Helper()
	gw := gitgw.New()
	return &App{
		GW: gw,
		Pipeline: &lifecycle.Pipeline{
			GW:            gw,
			RepoPath:      repoDir,
			DefaultBranch: "main",
			CurrentDir:    currentDir,
		},
	}
}

func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	return cmd
}
