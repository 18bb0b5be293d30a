package repocache

import (
	"context"
	"strings"

	"github.com/worktrunk/worktrunk/internal/logx"
)

// DefaultBranchOptions configures detection (spec §3 Default branch).
type DefaultBranchOptions struct {
	// AllowNetwork permits a `git ls-remote --symref` round trip when
	// the config cache and local heuristics are inconclusive.
	AllowNetwork bool
	// InitDefaultBranch is the value of `git config init.defaultBranch`,
	// if any, supplied by the caller (reading global git config is the
	// CLI dispatch layer's job, not the cache's).
	InitDefaultBranch string
}

// DefaultBranch resolves and caches the repository's default branch,
// following spec §3's detection order: cached worktrunk.default-branch
// config, the primary remote's symbolic HEAD (cached in config as a
// side effect), ls-remote --symref (network, optional), then local
// heuristics (solitary branch; init.defaultBranch; main/master/develop/
// trunk). Once resolved it is immutable for the command's duration
// (cached on this handle) and persisted to git config for next time.
func (c *Cache) DefaultBranch(ctx context.Context, opts DefaultBranchOptions) (string, error) {
	c.mu.Lock()
	if c.defaultBranch != nil {
		v := *c.defaultBranch
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if v, ok := c.gw.Config(ctx, c.root, "worktrunk.default-branch"); ok && v != "" {
		c.setDefaultBranch(v)
		return v, nil
	}

	remote := c.PrimaryRemote(ctx)
	if remote != "" {
		if out, err := c.gw.Run(ctx, c.root, "symbolic-ref", "--short", "refs/remotes/"+remote+"/HEAD"); err == nil {
			if v := strings.TrimPrefix(strings.TrimSpace(out), remote+"/"); v != "" {
				c.persistDefaultBranch(ctx, v)
				return v, nil
			}
		}
		if opts.AllowNetwork {
			if v, err := c.gw.LsRemoteSymref(ctx, c.root, remote); err == nil && v != "" {
				c.persistDefaultBranch(ctx, v)
				return v, nil
			}
		}
	}

	branches, err := c.gw.LocalBranches(ctx, c.root)
	if err == nil && len(branches) == 1 {
		c.persistDefaultBranch(ctx, branches[0])
		return branches[0], nil
	}

	if opts.InitDefaultBranch != "" {
		c.persistDefaultBranch(ctx, opts.InitDefaultBranch)
		return opts.InitDefaultBranch, nil
	}

	for _, candidate := range []string{"main", "master", "develop", "trunk"} {
		for _, b := range branches {
			if b == candidate {
				c.persistDefaultBranch(ctx, candidate)
				return candidate, nil
			}
		}
	}

	logx.Logger.Warn().Msg("could not determine default branch, falling back to \"main\"")
	c.persistDefaultBranch(ctx, "main")
	return "main", nil
}

func (c *Cache) setDefaultBranch(v string) {
	c.mu.Lock()
	c.defaultBranch = &v
	c.mu.Unlock()
}

func (c *Cache) persistDefaultBranch(ctx context.Context, v string) {
	c.setDefaultBranch(v)
	_ = c.gw.SetConfig(ctx, c.root, "worktrunk.default-branch", v)
}
