package gitgw

import (
	"context"
	"strings"

	"github.com/worktrunk/worktrunk/internal/wterr"
)

// StagePolicy controls which files `merge`'s auto-commit step stages,
// per spec §6 `[commit] stage`.
type StagePolicy string

const (
	StageAll     StagePolicy = "all"
	StageTracked StagePolicy = "tracked"
	StageNone    StagePolicy = "none"
)

// Stage applies policy to the worktree's index.
func (g *Gateway) Stage(ctx context.Context, wtPath string, policy StagePolicy) error {
	switch policy {
	case StageAll:
		_, err := g.Run(ctx, wtPath, "add", "-A")
		return err
	case StageTracked:
		_, err := g.Run(ctx, wtPath, "add", "-u")
		return err
	case StageNone:
		return nil
	default:
		_, err := g.Run(ctx, wtPath, "add", "-A")
		return err
	}
}

// StagedDiffEmpty reports whether the index has no staged changes
// relative to HEAD (used by merge's EmptySquash check, spec §8).
func (g *Gateway) StagedDiffEmpty(ctx context.Context, wtPath string) (bool, error) {
	_, _, err := g.RunCombined(ctx, wtPath, "diff", "--cached", "--quiet")
	if err == nil {
		return true, nil
	}
	if ge, ok := err.(wterr.UnknownGitError); ok && ge.Exit == 1 {
		return false, nil
	}
	return false, err
}

// Commit creates a commit from the currently staged changes.
func (g *Gateway) Commit(ctx context.Context, wtPath, message string, noVerify bool) error {
	args := []string{"commit", "-m", message}
	if noVerify {
		args = append(args, "--no-verify")
	}
	_, err := g.Run(ctx, wtPath, args...)
	return err
}

// ResetMixed resets HEAD to ref, keeping the working tree but
// unstaging everything (used before a squash).
func (g *Gateway) ResetMixed(ctx context.Context, wtPath, ref string) error {
	_, err := g.Run(ctx, wtPath, "reset", "--mixed", ref)
	return err
}

// CommitCount counts commits in fromRef..toRef.
func (g *Gateway) CommitCount(ctx context.Context, repoPath, fromRef, toRef string) (int, error) {
	out, err := g.Run(ctx, repoPath, "rev-list", "--count", fromRef+".."+toRef)
	if err != nil {
		return 0, err
	}
	return atoi(strings.TrimSpace(out)), nil
}

// CommitInfo is the commit summary used by status records (spec §3).
type CommitInfo struct {
	Sha       string
	ShortSha  string
	Message   string
	Timestamp string
}

// HeadInfo reads sha/short-sha/first-line-message/author-date for HEAD.
func (g *Gateway) HeadInfo(ctx context.Context, wtPath string) (CommitInfo, error) {
	out, err := g.Run(ctx, wtPath, "log", "-1", "--format=%H%x1f%h%x1f%s%x1f%aI")
	if err != nil {
		return CommitInfo{}, err
	}
	fields := strings.Split(strings.TrimRight(out, "\n"), "\x1f")
	if len(fields) != 4 {
		return CommitInfo{}, nil
	}
	return CommitInfo{Sha: fields[0], ShortSha: fields[1], Message: fields[2], Timestamp: fields[3]}, nil
}

// DiffEmpty reports whether fromRef..toRef contains no changes (used
// by the integration classifier's no_added_changes test, spec §4.7).
func (g *Gateway) DiffEmpty(ctx context.Context, repoPath, fromRef, toRef string) (bool, error) {
	_, _, err := g.RunCombined(ctx, repoPath, "diff", "--quiet", fromRef+".."+toRef)
	if err == nil {
		return true, nil
	}
	// git diff --quiet exits 1 for "differences found"; anything else
	// (bad ref, IO error) is a real failure the caller should see.
	if ge, ok := err.(wterr.UnknownGitError); ok && ge.Exit == 1 {
		return false, nil
	}
	return false, err
}

// TreeEqual reports whether two refs point at identical trees (used by
// the integration classifier's trees_match test, spec §4.7).
func (g *Gateway) TreeEqual(ctx context.Context, repoPath, a, b string) (bool, error) {
	treeA, err := g.Run(ctx, repoPath, "rev-parse", a+"^{tree}")
	if err != nil {
		return false, err
	}
	treeB, err := g.Run(ctx, repoPath, "rev-parse", b+"^{tree}")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(treeA) == strings.TrimSpace(treeB), nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (g *Gateway) IsAncestor(ctx context.Context, repoPath, ancestor, descendant string) bool {
	_, _, err := g.RunCombined(ctx, repoPath, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil
}

// Config reads a single git config value.
func (g *Gateway) Config(ctx context.Context, repoPath, key string) (string, bool) {
	out, err := g.Run(ctx, repoPath, "config", "--get", key)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// SetConfig writes a single git config value.
func (g *Gateway) SetConfig(ctx context.Context, repoPath, key, value string) error {
	_, err := g.Run(ctx, repoPath, "config", key, value)
	return err
}

// UnsetConfig removes a git config value, ignoring "key not found".
func (g *Gateway) UnsetConfig(ctx context.Context, repoPath, key string) error {
	_, _, _ = g.RunCombined(ctx, repoPath, "config", "--unset", key)
	return nil
}

// GitCommonDir returns the shared .git directory (same for every
// worktree of a repository).
func (g *Gateway) GitCommonDir(ctx context.Context, wtPath string) (string, error) {
	out, err := g.Run(ctx, wtPath, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsBare reports whether the repository at path is a bare repository.
func (g *Gateway) IsBare(ctx context.Context, repoPath string) bool {
	out, err := g.Run(ctx, repoPath, "rev-parse", "--is-bare-repository")
	return err == nil && strings.TrimSpace(out) == "true"
}

// TopLevel returns the working-tree root for a path inside a repo.
func (g *Gateway) TopLevel(ctx context.Context, path string) (string, error) {
	out, err := g.Run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
