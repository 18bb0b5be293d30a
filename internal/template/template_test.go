package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitution(t *testing.T) {
	e := &Engine{}
	out, err := e.Render("cd {{ worktree_path }}", Context{"worktree_path": "/x/y"}, false)
	require.NoError(t, err)
	assert.Equal(t, "cd /x/y", out)
}

func TestRenderUndefinedVariableErrors(t *testing.T) {
	e := &Engine{}
	_, err := e.Render("{{ upstream }}", Context{}, false)
	require.Error(t, err)
	assert.ErrorAs(t, err, new(interface{ Error() string }))
}

func TestRenderConditionalSilentlyFalse(t *testing.T) {
	e := &Engine{}
	out, err := e.Render("{% if upstream %}has upstream{% endif %}done", Context{}, false)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestSanitizeFilter(t *testing.T) {
	e := &Engine{}
	out, err := e.Render("../{{ repo }}.{{ branch | sanitize }}", Context{"repo": "acme", "branch": "feature/auth"}, false)
	require.NoError(t, err)
	assert.Equal(t, "../acme.feature-auth", out)
}

func TestHashPortRange(t *testing.T) {
	for _, s := range []string{"a", "feature/auth", "", "acme/repo"} {
		p := HashPort(s)
		assert.GreaterOrEqual(t, p, 10000)
		assert.LessOrEqual(t, p, 19999)
		assert.Equal(t, p, HashPort(s), "must be deterministic")
	}
}

func TestSanitizeDBNoLeadingDigitAndLen(t *testing.T) {
	out := SanitizeDB("123-Feature/Auth!!")
	assert.LessOrEqual(t, len(out), 63)
	assert.NotRegexp(t, `^[0-9]`, out)
}

func TestShellEscapeRoundTrips(t *testing.T) {
	assert.Equal(t, `'it'\''s'`, ShellEscape("it's"))
}

func TestEscapedRenderEscapesForShell(t *testing.T) {
	e := &Engine{}
	out, err := e.Render("echo {{ branch }}", Context{"branch": "it's a test"}, true)
	require.NoError(t, err)
	assert.Equal(t, `echo 'it'\''s a test'`, out)
}

func TestWorktreePathOfBranchFunction(t *testing.T) {
	e := &Engine{Resolve: func(b string) string {
		if b == "feature" {
			return "/w/feature"
		}
		return ""
	}}
	out, err := e.Render(`{{ worktree_path_of_branch("feature") }}`, Context{}, false)
	require.NoError(t, err)
	assert.Equal(t, "/w/feature", out)
}
