package gitgw

import (
	"context"
	"strings"
)

// RemoteURL returns the URL configured for the named remote.
func (g *Gateway) RemoteURL(ctx context.Context, repoPath, name string) (string, error) {
	out, err := g.Run(ctx, repoPath, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Remotes returns every remote name configured in the repository.
func (g *Gateway) Remotes(ctx context.Context, repoPath string) ([]string, error) {
	out, err := g.Run(ctx, repoPath, "remote")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// LsRemoteSymref resolves a remote's symbolic HEAD to a branch name,
// e.g. `git ls-remote --symref origin HEAD` -> "main". Subject to
// NetworkTimeout since it touches the network (spec §5).
func (g *Gateway) LsRemoteSymref(ctx context.Context, repoPath, remote string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, NetworkTimeout)
	defer cancel()
	out, err := g.Run(ctx, repoPath, "ls-remote", "--symref", remote, "HEAD")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "ref: refs/heads/") {
			fields := strings.Fields(strings.TrimPrefix(line, "ref: "))
			if len(fields) > 0 {
				return strings.TrimPrefix(fields[0], "refs/heads/"), nil
			}
		}
	}
	return "", nil
}

// LocalBranches lists all local branch names.
func (g *Gateway) LocalBranches(ctx context.Context, repoPath string) ([]string, error) {
	out, err := g.Run(ctx, repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}
