package gitgw

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/worktrunk/worktrunk/internal/wterr"
)

// CurrentBranch returns the branch checked out at wtPath, or ("", true)
// when HEAD is detached. Grounded on the teacher's
// internal/git/branch.go BranchExists/GetDefaultBranch family, which
// favors show-ref/symbolic-ref over `git branch` for determinism.
func (g *Gateway) CurrentBranch(ctx context.Context, wtPath string) (branch string, detached bool, err error) {
	out, rerr := g.Run(ctx, wtPath, "symbolic-ref", "--short", "HEAD")
	if rerr == nil {
		return strings.TrimSpace(out), false, nil
	}
	// Not a symbolic ref: detached HEAD. Confirm via rev-parse so a
	// genuinely broken repo still surfaces an error.
	if _, e2 := g.RevParse(ctx, wtPath, "HEAD"); e2 != nil {
		return "", false, e2
	}
	return "", true, nil
}

// BranchExists checks refs/heads/<branch> (local) existence.
func (g *Gateway) BranchExists(ctx context.Context, repoPath, branch string) bool {
	_, err := g.Run(ctx, repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// RevParse resolves ref to a full sha.
func (g *Gateway) RevParse(ctx context.Context, repoPath, ref string) (string, error) {
	out, err := g.Run(ctx, repoPath, "rev-parse", ref)
	if err != nil {
		return "", wterr.BranchNotFound{Branch: ref}
	}
	return strings.TrimSpace(out), nil
}

// ShortSha abbreviates a sha with `git rev-parse --short`: at least 7
// characters, more when needed to stay unique.
func (g *Gateway) ShortSha(ctx context.Context, repoPath, ref string) (string, error) {
	out, err := g.Run(ctx, repoPath, "rev-parse", "--short", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the merge base of a and b. Order-independent.
func (g *Gateway) MergeBase(ctx context.Context, repoPath, a, b string) (string, error) {
	out, err := g.Run(ctx, repoPath, "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(out), nil
}

// AheadBehindOne computes (ahead, behind) of tip relative to base via a
// single rev-list --left-right --count call.
func (g *Gateway) AheadBehindOne(ctx context.Context, repoPath, base, tip string) (AheadBehind, error) {
	out, err := g.Run(ctx, repoPath, "rev-list", "--left-right", "--count", base+"..."+tip)
	if err != nil {
		return AheadBehind{}, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return AheadBehind{}, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	behind, _ := strconv.Atoi(fields[0])
	ahead, _ := strconv.Atoi(fields[1])
	return AheadBehind{Ahead: ahead, Behind: behind}, nil
}

// AheadBehindBatch resolves many (base,tip) pairs concurrently under a
// bounded worker pool, matching spec §4.1's "parallelized" batching
// requirement and §5's default-32 worker cap. Keys of the result map
// are "base..tip".
func (g *Gateway) AheadBehindBatch(ctx context.Context, repoPath string, pairs []RefPair, maxWorkers int) (map[string]AheadBehind, error) {
	if maxWorkers <= 0 {
		maxWorkers = 32
	}
	results := make(map[string]AheadBehind, len(pairs))
	type job struct {
		key  string
		pair RefPair
	}
	type result struct {
		key string
		ab  AheadBehind
		err error
	}

	jobs := make(chan job, len(pairs))
	out := make(chan result, len(pairs))

	workers := maxWorkers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers == 0 {
		return results, nil
	}
	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				ab, err := g.AheadBehindOne(ctx, repoPath, j.pair.Base, j.pair.Tip)
				out <- result{key: j.key, ab: ab, err: err}
			}
		}()
	}
	for _, p := range pairs {
		jobs <- job{key: p.Base + ".." + p.Tip, pair: p}
	}
	close(jobs)

	var firstErr error
	for range pairs {
		r := <-out
		if r.err != nil && firstErr == nil {
			firstErr = r.err
			continue
		}
		results[r.key] = r.ab
	}
	return results, firstErr
}

// DeleteBranch removes a local branch. Safe (-d) unless force.
func (g *Gateway) DeleteBranch(ctx context.Context, repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := g.Run(ctx, repoPath, "branch", flag, branch)
	return err
}

// RenameBranch renames a branch without switching to it.
func (g *Gateway) RenameBranch(ctx context.Context, repoPath, oldName, newName string) error {
	_, err := g.Run(ctx, repoPath, "branch", "-m", oldName, newName)
	return err
}

// UpdateRef creates or moves ref to point at target (used for
// refs/wt-backup/<branch> before a squash merge).
func (g *Gateway) UpdateRef(ctx context.Context, repoPath, ref, target string) error {
	_, err := g.Run(ctx, repoPath, "update-ref", ref, target)
	return err
}
