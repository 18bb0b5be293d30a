package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapResolvesAppForARepo(t *testing.T) {
	dir := initRepo(t)

	app, err := bootstrap(globalFlags{
		chdir:      dir,
		configPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	require.NoError(t, err)

	assert.Equal(t, dir, app.Pipeline.RepoPath)
	assert.Equal(t, "main", app.Pipeline.DefaultBranch)
	assert.NotNil(t, app.Approvals)
	assert.NotNil(t, app.Pipeline.Hooks)
}

func TestBootstrapFailsOutsideARepo(t *testing.T) {
	dir := t.TempDir() // no git init

	_, err := bootstrap(globalFlags{
		chdir:      dir,
		configPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	assert.Error(t, err)
}
