package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

func TestApplyMergeDefaultsTranslatesFalseIntoNoFlags(t *testing.T) {
	app := &App{Config: wtconfig.Merged{User: wtconfig.UserConfig{
		Merge: wtconfig.MergeDefaults{Squash: true, Commit: true, Rebase: false, Remove: false, Verify: true},
	}}}
	var opts lifecycle.MergeOptions
	applyMergeDefaults(&opts, app)

	assert.False(t, opts.NoSquash)
	assert.False(t, opts.NoCommit)
	assert.True(t, opts.NoRebase)
	assert.True(t, opts.NoRemove)
	assert.False(t, opts.NoVerify)
}

func TestApplyMergeDefaultsLeavesAlreadySetFlagsAlone(t *testing.T) {
	app := &App{Config: wtconfig.Merged{User: wtconfig.UserConfig{
		Merge: wtconfig.DefaultMergeDefaults(),
	}}}
	opts := lifecycle.MergeOptions{NoSquash: true}
	applyMergeDefaults(&opts, app)

	assert.True(t, opts.NoSquash)
	assert.False(t, opts.NoCommit)
	assert.False(t, opts.NoRebase)
	assert.False(t, opts.NoRemove)
	assert.False(t, opts.NoVerify)
}
