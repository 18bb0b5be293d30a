// Package approvalstore implements the approval store (spec §4.4):
// persistent, per-project consent for running project-scope hook
// commands, so a cloned repo's hooks can't execute arbitrary code
// without the user seeing the exact command first.
//
// Approvals are a field of the user config file
// (~/.config/worktrunk/config.toml, [projects."<id>"] approved-commands),
// so this package reads and rewrites that file directly rather than
// keeping a separate store. Concurrent worktrunk invocations across
// worktrees of the same repo can race to record an approval, so every
// mutation takes an exclusive github.com/gofrs/flock file lock around
// a read-modify-write of the whole file.
package approvalstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"

	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// lockTimeout bounds how long a mutation waits for the file lock
// before giving up; a wedged lock should surface as an error, not hang
// the CLI forever.
const lockTimeout = 5 * time.Second

// Store guards one user config file's [projects] section.
type Store struct {
	path string
}

// New returns a Store backed by the user config file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// IsApproved reports whether command is already approved for project.
func (s *Store) IsApproved(project, command string) (bool, error) {
	cfg, err := wtconfig.LoadUser(s.path)
	if err != nil {
		return false, err
	}
	for _, c := range cfg.Projects[project].ApprovedCommands {
		if c == command {
			return true, nil
		}
	}
	return false, nil
}

// Approve records command as approved for project, persisting the
// change under an exclusive file lock. Approving a command twice is a
// no-op.
func (s *Store) Approve(ctx context.Context, project, command string) error {
	return s.mutate(ctx, func(cfg *wtconfig.UserConfig) {
		entry := cfg.Projects[project]
		for _, c := range entry.ApprovedCommands {
			if c == command {
				return
			}
		}
		entry.ApprovedCommands = append(entry.ApprovedCommands, command)
		cfg.Projects[project] = entry
	})
}

// Clear removes every approved command for project.
func (s *Store) Clear(ctx context.Context, project string) error {
	return s.mutate(ctx, func(cfg *wtconfig.UserConfig) {
		delete(cfg.Projects, project)
	})
}

// ClearAll removes every approval for every project (spec's
// `wt hook approvals clear --global`).
func (s *Store) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, func(cfg *wtconfig.UserConfig) {
		cfg.Projects = map[string]wtconfig.ProjectApprovals{}
	})
}

// mutate performs a locked read-modify-write of the user config file.
// The file may not exist yet, in which case it is created with
// DefaultUserConfig as the starting point.
func (s *Store) mutate(ctx context.Context, fn func(*wtconfig.UserConfig)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	lock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return err
	}
	if !locked {
		return errLockTimeout{path: s.path}
	}
	defer lock.Unlock()

	cfg, err := wtconfig.LoadUser(s.path)
	if err != nil {
		return err
	}
	if cfg.Projects == nil {
		cfg.Projects = map[string]wtconfig.ProjectApprovals{}
	}
	fn(&cfg)

	return writeAtomic(s.path, cfg)
}

// writeAtomic encodes cfg as TOML and renames it into place so a
// crash mid-write never leaves a truncated config file.
func writeAtomic(path string, cfg wtconfig.UserConfig) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wtconfig-*.toml")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type errLockTimeout struct{ path string }

func (e errLockTimeout) Error() string {
	return "timed out waiting for lock on " + e.path
}
