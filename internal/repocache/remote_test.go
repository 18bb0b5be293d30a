package repocache

import "testing"

func TestNormalizeRemoteURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:acme/repo.git":    "github.com/acme/repo",
		"https://github.com/acme/repo.git": "github.com/acme/repo",
		"https://github.com/acme/repo":     "github.com/acme/repo",
		"ssh://git@github.com/acme/repo":   "github.com/acme/repo",
	}
	for in, want := range cases {
		if got := NormalizeRemoteURL(in); got != want {
			t.Errorf("NormalizeRemoteURL(%q) = %q, want %q", in, got, want)
		}
	}
}
