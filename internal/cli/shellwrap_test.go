package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellWrapperBashAndZshShareThePosixScript(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "sh", ""} {
		script, err := shellWrapper(shell)
		require.NoError(t, err)
		assert.Equal(t, posixWrapper, script)
		assert.Contains(t, script, "WORKTRUNK_DIRECTIVE_FILE")
	}
}

func TestShellWrapperFish(t *testing.T) {
	script, err := shellWrapper("fish")
	require.NoError(t, err)
	assert.Equal(t, fishWrapper, script)
	assert.True(t, strings.HasPrefix(script, "function wt"))
}

func TestShellWrapperRejectsUnknownShell(t *testing.T) {
	_, err := shellWrapper("powershell")
	assert.Error(t, err)
}
