package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStdin(t *testing.T, content string) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = old })
}

func TestPromptApprovalAcceptsYVariants(t *testing.T) {
	for _, answer := range []string{"y\n", "Y\n", "yes\n", "YES\n"} {
		withStdin(t, answer)
		ok, err := promptApproval(false)([]string{"echo hi", "echo bye"})
		require.NoError(t, err)
		assert.True(t, ok, "answer %q should approve", answer)
	}
}

func TestPromptApprovalRejectsAnythingElse(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "nope\n"} {
		withStdin(t, answer)
		ok, err := promptApproval(false)([]string{"echo hi"})
		require.NoError(t, err)
		assert.False(t, ok, "answer %q should not approve", answer)
	}
}

func TestPromptApprovalOnEOFReturnsFalseWithoutError(t *testing.T) {
	withStdin(t, "")
	ok, err := promptApproval(false)([]string{"echo hi"})
	require.NoError(t, err)
	assert.False(t, ok)
}
