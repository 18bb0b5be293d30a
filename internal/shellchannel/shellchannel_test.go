package shellchannel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/envkeys"
	"github.com/worktrunk/worktrunk/internal/lifecycle"
)

func TestDetectPrefersFileOverStream(t *testing.T) {
	t.Setenv(envkeys.DirectiveFile, "/tmp/whatever")
	w := Detect("bash")
	assert.Equal(t, ModeFile, w.mode)
}

func TestDetectStreamWithoutFile(t *testing.T) {
	t.Setenv(envkeys.DirectiveFile, "")
	os.Unsetenv(envkeys.DirectiveFile)
	w := Detect("bash")
	assert.Equal(t, ModeStream, w.mode)
}

func TestDetectNoneWithoutWrapper(t *testing.T) {
	os.Unsetenv(envkeys.DirectiveFile)
	w := Detect("")
	assert.Equal(t, ModeNone, w.mode)
}

func TestFlushFileWritesCDAndExec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directives.sh")
	w := &Writer{mode: ModeFile, filePath: path}
	w.Add(lifecycle.Directive{Kind: lifecycle.DirectiveCD, Path: "/repo/feature wt"})
	w.Add(lifecycle.Directive{Kind: lifecycle.DirectiveExec, Command: "npm test"})
	require.NoError(t, w.Flush())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "cd '/repo/feature wt'")
	assert.Contains(t, string(out), "npm test")
}

func TestFlushFileIgnoresNoneDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directives.sh")
	w := &Writer{mode: ModeFile, filePath: path}
	w.Add(lifecycle.Directive{Kind: lifecycle.DirectiveNone})
	require.NoError(t, w.Flush())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(out))
}

func TestStripFromEnvRemovesDirectiveFile(t *testing.T) {
	env := []string{"HOME=/home/me", envkeys.DirectiveFile + "=/tmp/d", "PATH=/bin"}
	stripped := StripFromEnv(env)
	assert.Len(t, stripped, 2)
	for _, kv := range stripped {
		assert.NotContains(t, kv, envkeys.DirectiveFile)
	}
}
