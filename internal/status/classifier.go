package status

import (
	"context"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/repocache"
)

// Classify runs the integration classifier (spec §4.7): first match
// wins, in the order the spec lists. dirty is the branch worktree's
// working-tree dirtiness, needed by the empty test.
func Classify(ctx context.Context, gw *gitgw.Gateway, cache *repocache.Cache, repoPath, defaultBranch, branch string, dirty bool) (Classification, error) {
	if branch == defaultBranch {
		return ClassIsMain, nil
	}

	ahead, err := cache.AheadBehind(ctx, defaultBranch, branch)
	if err != nil {
		return ClassUnknown, err
	}
	if ahead.Ahead == 0 && !dirty {
		return ClassEmpty, nil
	}

	defaultSha, err := gw.RevParse(ctx, repoPath, defaultBranch)
	if err != nil {
		return ClassUnknown, err
	}
	branchSha, err := gw.RevParse(ctx, repoPath, branch)
	if err != nil {
		return ClassUnknown, err
	}
	if defaultSha == branchSha {
		return ClassSameCommit, nil
	}

	if gw.IsAncestor(ctx, repoPath, branchSha, defaultSha) {
		return ClassAncestor, nil
	}

	if treesMatch, err := gw.TreeEqual(ctx, repoPath, branch, defaultBranch); err == nil && treesMatch {
		return ClassTreesMatch, nil
	}

	if empty, err := gw.DiffEmpty(ctx, repoPath, defaultBranch, branch); err == nil && empty {
		return ClassNoAddedChanges, nil
	}

	mergeBase, err := cache.MergeBase(ctx, defaultBranch, branch)
	if err == nil && mergeBase != "" {
		if treesMatch, err := gw.TreeEqual(ctx, repoPath, mergeBase, branch); err == nil && treesMatch {
			return ClassMergeAddsNothing, nil
		}
	}

	result, err := gw.MergeTree(ctx, repoPath, defaultBranch, branch)
	if err == nil && result.Conflict {
		return ClassWouldConflict, nil
	}

	switch {
	case ahead.Ahead > 0 && ahead.Behind == 0:
		return ClassAhead, nil
	case ahead.Ahead == 0 && ahead.Behind > 0:
		return ClassBehind, nil
	default:
		return ClassDiverged, nil
	}
}
