package repocache

import "strings"

// NormalizeRemoteURL reduces a git remote URL to "host/owner/repo",
// handling both the scp-like ssh form (git@host:owner/repo.git) and
// URL forms (https://host/owner/repo.git), per spec §3's Project
// identifier definition.
func NormalizeRemoteURL(url string) string {
	u := strings.TrimSuffix(strings.TrimSpace(url), ".git")

	if idx := strings.Index(u, "://"); idx >= 0 {
		u = u[idx+3:]
		if at := strings.Index(u, "@"); at >= 0 {
			u = u[at+1:]
		}
		return strings.Trim(u, "/")
	}

	if at := strings.Index(u, "@"); at >= 0 {
		u = u[at+1:]
	}
	u = strings.Replace(u, ":", "/", 1)
	return strings.Trim(u, "/")
}
