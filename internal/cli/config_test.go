package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCreateWritesStarterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")

	oldPath := flags.configPath
	flags.configPath = path
	defer func() { flags.configPath = oldPath }()

	cmd := testCommand(t)
	require.NoError(t, configCreateCmd.RunE(cmd, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[")
}

func TestConfigCreateLeavesExistingFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# custom\n"), 0o644))

	oldPath := flags.configPath
	flags.configPath = path
	defer func() { flags.configPath = oldPath }()

	cmd := testCommand(t)
	require.NoError(t, configCreateCmd.RunE(cmd, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# custom\n", string(b))
}
