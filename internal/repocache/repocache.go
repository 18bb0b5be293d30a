// Package repocache is the repo cache (spec §4.2): per-invocation
// memoization of stable repo facts, shared across concurrent status
// tasks through one *Cache handle.
//
// Grounded on the teacher's internal/cache/lru.go locking style
// (sync.RWMutex-guarded maps) generalized to spec.md's two kinds of
// cell: write-once lazy cells (default branch, primary remote, ...)
// and keyed concurrent maps (merge_base(a,b), ahead_behind(base,tip)).
// "Never cached" per spec: is_dirty and list_worktrees — callers must
// go straight to the gateway for those.
package repocache

import (
	"context"
	"sync"

	"github.com/worktrunk/worktrunk/internal/gitgw"
)

// Cache is a shared handle over write-once cells and keyed caches for
// one repository. The zero value is not usable; use New. Concurrent
// users share the *Cache that New returns; copying the struct value
// copies its mutexes and does not share cells filled after the copy.
// Tests construct their own Cache so they never contend with a
// process-wide singleton.
type Cache struct {
	gw   *gitgw.Gateway
	root string // a worktree path used to resolve repo-wide facts

	mu              sync.Mutex
	gitCommonDir    *string
	isBare          *bool
	projectID       *string
	primaryRemote   *string
	defaultBranch   *string
	worktreeBaseDir *string

	keyedMu    sync.Mutex
	mergeBase  map[string]string
	aheadBeh   map[string]gitgw.AheadBehind
	curBranch  map[string]string
	worktreeRt map[string]string
}

// New creates a Cache rooted at a worktree path belonging to the
// repository of interest.
func New(gw *gitgw.Gateway, rootWorktreePath string) *Cache {
	return &Cache{
		gw:         gw,
		root:       rootWorktreePath,
		mergeBase:  make(map[string]string),
		aheadBeh:   make(map[string]gitgw.AheadBehind),
		curBranch:  make(map[string]string),
		worktreeRt: make(map[string]string),
	}
}

// GitCommonDir returns the shared .git directory, cached for the
// lifetime of this handle.
func (c *Cache) GitCommonDir(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gitCommonDir != nil {
		return *c.gitCommonDir, nil
	}
	v, err := c.gw.GitCommonDir(ctx, c.root)
	if err != nil {
		return "", err
	}
	c.gitCommonDir = &v
	return v, nil
}

// IsBare reports whether the repository is bare, cached.
func (c *Cache) IsBare(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isBare != nil {
		return *c.isBare
	}
	v := c.gw.IsBare(ctx, c.root)
	c.isBare = &v
	return v
}

// PrimaryRemote returns the remote consulted for default-branch
// detection and ls-remote lookups: "origin" if present, else the sole
// remote, else "".
func (c *Cache) PrimaryRemote(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.primaryRemote != nil {
		return *c.primaryRemote
	}
	remotes, err := c.gw.Remotes(ctx, c.root)
	v := ""
	if err == nil {
		for _, r := range remotes {
			if r == "origin" {
				v = "origin"
				break
			}
		}
		if v == "" && len(remotes) == 1 {
			v = remotes[0]
		}
	}
	c.primaryRemote = &v
	return v
}

// ProjectIdentifier derives the stable project key (spec §3): the
// primary remote URL normalized to host/owner/repo, or the repo root
// path if there is no remote.
func (c *Cache) ProjectIdentifier(ctx context.Context) string {
	c.mu.Lock()
	if c.projectID != nil {
		v := *c.projectID
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	// PrimaryRemote takes c.mu itself, so it is called unlocked.
	v := c.root
	remote := c.PrimaryRemote(ctx)
	if remote != "" {
		if url, err := c.gw.RemoteURL(ctx, c.root, remote); err == nil && url != "" {
			v = NormalizeRemoteURL(url)
		}
	}
	c.mu.Lock()
	c.projectID = &v
	c.mu.Unlock()
	return v
}

// WorktreeRoot resolves the worktree root containing path, cached per path.
func (c *Cache) WorktreeRoot(ctx context.Context, path string) (string, error) {
	c.keyedMu.Lock()
	if v, ok := c.worktreeRt[path]; ok {
		c.keyedMu.Unlock()
		return v, nil
	}
	c.keyedMu.Unlock()

	v, err := c.gw.TopLevel(ctx, path)
	if err != nil {
		return "", err
	}
	c.keyedMu.Lock()
	c.worktreeRt[path] = v
	c.keyedMu.Unlock()
	return v, nil
}

// CurrentBranch returns the branch checked out at path, cached per path.
func (c *Cache) CurrentBranch(ctx context.Context, path string) (string, bool, error) {
	c.keyedMu.Lock()
	if v, ok := c.curBranch[path]; ok {
		c.keyedMu.Unlock()
		return v, v == "", nil
	}
	c.keyedMu.Unlock()

	branch, detached, err := c.gw.CurrentBranch(ctx, path)
	if err != nil {
		return "", false, err
	}
	c.keyedMu.Lock()
	c.curBranch[path] = branch
	c.keyedMu.Unlock()
	return branch, detached, nil
}

// MergeBase is order-independent: merge_base(a,b) == merge_base(b,a).
func (c *Cache) MergeBase(ctx context.Context, a, b string) (string, error) {
	key := mergeBaseKey(a, b)
	c.keyedMu.Lock()
	if v, ok := c.mergeBase[key]; ok {
		c.keyedMu.Unlock()
		return v, nil
	}
	c.keyedMu.Unlock()

	v, err := c.gw.MergeBase(ctx, c.root, a, b)
	if err != nil {
		return "", err
	}
	c.keyedMu.Lock()
	c.mergeBase[key] = v
	c.keyedMu.Unlock()
	return v, nil
}

// AheadBehind returns cached (ahead,behind) for a (base,tip) pair.
func (c *Cache) AheadBehind(ctx context.Context, base, tip string) (gitgw.AheadBehind, error) {
	key := base + ".." + tip
	c.keyedMu.Lock()
	if v, ok := c.aheadBeh[key]; ok {
		c.keyedMu.Unlock()
		return v, nil
	}
	c.keyedMu.Unlock()

	v, err := c.gw.AheadBehindOne(ctx, c.root, base, tip)
	if err != nil {
		return gitgw.AheadBehind{}, err
	}
	c.keyedMu.Lock()
	c.aheadBeh[key] = v
	c.keyedMu.Unlock()
	return v, nil
}

func mergeBaseKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// Gateway exposes the underlying gateway for callers that need an
// uncached operation (is_dirty, list_worktrees per spec §4.2).
func (c *Cache) Gateway() *gitgw.Gateway { return c.gw }

// Root returns the worktree path this cache was constructed from.
func (c *Cache) Root() string { return c.root }
