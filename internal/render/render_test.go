package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/wterr"
)

func TestErrorReturnsTypedExitCode(t *testing.T) {
	code := Error(wterr.HookFailed{Source: "project", Name: "lint", Exit: 1})
	assert.Equal(t, wterr.ExitHookOrApproval, code)
}

func TestErrorDefaultsToExitFailureForPlainError(t *testing.T) {
	code := Error(assertionError{"boom"})
	assert.Equal(t, wterr.ExitFailure, code)
}

func TestBranchNotFoundImplementsHinter(t *testing.T) {
	err := wterr.BranchNotFound{Branch: "feature", HintText: "use --create to create it"}
	h, ok := error(err).(Hinter)
	assert.True(t, ok)
	assert.Equal(t, "use --create to create it", h.Hint())
}

func TestEmitDirectiveIgnoresNone(t *testing.T) {
	// Should not panic even with no Init() call; directives() falls
	// back to a detached Detect("") writer.
	EmitDirective(lifecycle.Directive{Kind: lifecycle.DirectiveNone})
}

type assertionError struct{ msg string }

func (e assertionError) Error() string { return e.msg }
